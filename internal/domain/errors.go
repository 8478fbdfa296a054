package domain

import "errors"

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrOrderNotFound          = errors.New("order not found")
	ErrStaleTransition        = errors.New("stale status transition")
	ErrReconciliationRequired = errors.New("manual reconciliation required")
	ErrTrackingCodeRequired   = errors.New("tracking code required")
	ErrDisputeReasonRequired  = errors.New("dispute reason required")
	ErrInvalidState           = errors.New("operation not allowed in current order status")
)

// GatewayError is returned by the payment gateway client. Transient errors
// (network, timeout, 5xx) may be retried by the caller; permanent ones
// (bad credentials, provider rejection) must surface immediately.
type GatewayError struct {
	Code      string
	Transient bool
	Err       error
}

const (
	GatewayCodeNetwork      = "network"
	GatewayCodeTimeout      = "timeout"
	GatewayCodeMalformed    = "malformed_response"
	GatewayCodeUnauthorized = "unauthorized"
	GatewayCodeRejected     = "rejected"
)

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return "gateway: " + e.Code + ": " + e.Err.Error()
	}
	return "gateway: " + e.Code
}

func (e *GatewayError) Unwrap() error { return e.Err }

// AsGatewayError unwraps err into a *GatewayError if possible.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
