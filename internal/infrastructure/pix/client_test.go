package pix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yuanbr/escrow-order-service/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateCharge(t *testing.T) {
	var calls int64
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		require.Equal(t, "/api/v1/charge", r.URL.Path)
		require.Equal(t, "test-app-id", r.Header.Get("Authorization"))

		var req chargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(86100), req.Value)

		json.NewEncoder(w).Encode(map[string]any{
			"charge": map[string]any{
				"identifier":     "prov-123",
				"correlationID":  req.CorrelationID,
				"brCode":         "00020126br.gov.bcb.pix",
				"qrCodeImage":    "https://api.example/qr/123.png",
				"paymentLinkUrl": "https://pay.example/123",
				"status":         "ACTIVE",
				"value":          req.Value,
			},
		})
	})

	client := NewClient(srv.URL, "test-app-id", time.Second)

	handle, err := client.CreateCharge(context.Background(), "ord-1", 86100)
	require.NoError(t, err)
	require.Equal(t, "prov-123", handle.ProviderRef)
	require.Equal(t, "00020126br.gov.bcb.pix", handle.PaymentCode)
	require.Equal(t, int64(86100), handle.AmountCents)

	// Same correlation id never mints a second charge.
	again, err := client.CreateCharge(context.Background(), "ord-1", 86100)
	require.NoError(t, err)
	require.Equal(t, handle, again)
	require.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestCreateChargeMissingAppID(t *testing.T) {
	client := NewClient("http://localhost:1", "", time.Second)

	_, err := client.CreateCharge(context.Background(), "ord-1", 100)
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	require.Equal(t, domain.GatewayCodeUnauthorized, ge.Code)
	require.False(t, ge.Transient)
}

func TestCreateChargeProviderRejection(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "correlationID already used with different value"})
	})

	client := NewClient(srv.URL, "app", time.Second)

	_, err := client.CreateCharge(context.Background(), "ord-1", 100)
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	require.Equal(t, domain.GatewayCodeRejected, ge.Code)
	require.False(t, ge.Transient)
}

func TestCreateChargeMalformedResponse(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	client := NewClient(srv.URL, "app", time.Second)

	_, err := client.CreateCharge(context.Background(), "ord-1", 100)
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	require.Equal(t, domain.GatewayCodeMalformed, ge.Code)
}

func TestCreateChargeServerErrorIsTransient(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewClient(srv.URL, "app", time.Second)

	_, err := client.CreateCharge(context.Background(), "ord-1", 100)
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	require.True(t, ge.Transient)
}

func TestQueryStatusMapping(t *testing.T) {
	cases := map[string]domain.ChargeStatus{
		"ACTIVE":    domain.ChargePending,
		"COMPLETED": domain.ChargeConfirmed,
		"EXPIRED":   domain.ChargeExpired,
	}

	for providerStatus, want := range cases {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/charge/ord-1", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"charge": map[string]any{"status": providerStatus, "value": 86100},
			})
		})

		client := NewClient(srv.URL, "app", time.Second)

		state, err := client.QueryStatus(context.Background(), "ord-1")
		require.NoError(t, err)
		require.Equal(t, want, state.Status)
		require.Equal(t, int64(86100), state.PaidCents)
	}
}

func TestQueryStatusUnknownStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"charge": map[string]any{"status": "WEIRD"},
		})
	})

	client := NewClient(srv.URL, "app", time.Second)

	_, err := client.QueryStatus(context.Background(), "ord-1")
	ge, ok := domain.AsGatewayError(err)
	require.True(t, ok)
	require.Equal(t, domain.GatewayCodeMalformed, ge.Code)
}
