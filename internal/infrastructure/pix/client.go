package pix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/yuanbr/escrow-order-service/internal/domain"
)

var _ domain.PaymentGateway = (*Client)(nil)

// Client talks to a Woovi/OpenPix-style instant-payment API. It is
// stateless except for the idempotency cache, which maps a correlation id
// to the charge handle already minted for it.
type Client struct {
	baseURL string
	appID   string
	http    *resty.Client

	mu      sync.Mutex
	charges map[string]*domain.ChargeHandle
}

func NewClient(baseURL, appID string, callTimeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(callTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", appID)

	return &Client{
		baseURL: baseURL,
		appID:   appID,
		http:    httpClient,
		charges: make(map[string]*domain.ChargeHandle),
	}
}

type chargeRequest struct {
	CorrelationID string `json:"correlationID"`
	Value         int64  `json:"value"`
	Comment       string `json:"comment"`
}

type chargeResponse struct {
	Error  string `json:"error"`
	Charge struct {
		Identifier     string `json:"identifier"`
		CorrelationID  string `json:"correlationID"`
		BRCode         string `json:"brCode"`
		QRCodeImage    string `json:"qrCodeImage"`
		PaymentLinkURL string `json:"paymentLinkUrl"`
		Status         string `json:"status"`
		Value          int64  `json:"value"`
	} `json:"charge"`
}

func (c *Client) CreateCharge(ctx context.Context, correlationID string, amountCents int64) (*domain.ChargeHandle, error) {
	if c.appID == "" {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeUnauthorized, Err: fmt.Errorf("missing PIX app id")}
	}

	c.mu.Lock()
	if handle, ok := c.charges[correlationID]; ok {
		c.mu.Unlock()
		return handle, nil
	}
	c.mu.Unlock()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chargeRequest{
			CorrelationID: correlationID,
			Value:         amountCents,
			Comment:       fmt.Sprintf("Order %s - YUANBR", correlationID),
		}).
		Post("/api/v1/charge")
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeUnauthorized, Err: fmt.Errorf("provider status %d", resp.StatusCode())}
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeNetwork, Transient: true, Err: fmt.Errorf("provider status %d", resp.StatusCode())}
	}

	var body chargeResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeMalformed, Err: err}
	}
	if body.Error != "" {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeRejected, Err: fmt.Errorf("%s", body.Error)}
	}
	if body.Charge.BRCode == "" {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeMalformed, Err: fmt.Errorf("charge missing brCode")}
	}

	handle := &domain.ChargeHandle{
		CorrelationID: correlationID,
		ProviderRef:   body.Charge.Identifier,
		PaymentCode:   body.Charge.BRCode,
		QRCodeImage:   body.Charge.QRCodeImage,
		PaymentLink:   body.Charge.PaymentLinkURL,
		AmountCents:   amountCents,
	}

	c.mu.Lock()
	// Keep the first handle if a concurrent call won the race.
	if existing, ok := c.charges[correlationID]; ok {
		handle = existing
	} else {
		c.charges[correlationID] = handle
	}
	c.mu.Unlock()

	return handle, nil
}

func (c *Client) QueryStatus(ctx context.Context, correlationID string) (*domain.ChargeState, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/v1/charge/" + correlationID)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeUnauthorized, Err: fmt.Errorf("provider status %d", resp.StatusCode())}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeNetwork, Transient: resp.StatusCode() >= http.StatusInternalServerError, Err: fmt.Errorf("provider status %d", resp.StatusCode())}
	}

	var body chargeResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &domain.GatewayError{Code: domain.GatewayCodeMalformed, Err: err}
	}

	status, err := mapChargeStatus(body.Charge.Status)
	if err != nil {
		return nil, err
	}

	return &domain.ChargeState{
		Status:    status,
		PaidCents: body.Charge.Value,
	}, nil
}

func mapChargeStatus(providerStatus string) (domain.ChargeStatus, error) {
	switch providerStatus {
	case "ACTIVE":
		return domain.ChargePending, nil
	case "COMPLETED":
		return domain.ChargeConfirmed, nil
	case "EXPIRED":
		return domain.ChargeExpired, nil
	default:
		return "", &domain.GatewayError{
			Code: domain.GatewayCodeMalformed,
			Err:  fmt.Errorf("unknown charge status %q", providerStatus),
		}
	}
}

func classifyTransportError(err error) *domain.GatewayError {
	if ctxErr, ok := err.(interface{ Timeout() bool }); ok && ctxErr.Timeout() {
		return &domain.GatewayError{Code: domain.GatewayCodeTimeout, Transient: true, Err: err}
	}
	return &domain.GatewayError{Code: domain.GatewayCodeNetwork, Transient: true, Err: err}
}
