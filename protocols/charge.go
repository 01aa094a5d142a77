package protocols

import (
	"context"
	"errors"
)

// ChargeParams holds the charge parameters exactly as the client sent them.
type ChargeParams map[string]any

type ChargeErrorType string

const (
	ChargeErrorCard           ChargeErrorType = "card_error"
	ChargeErrorInvalidRequest ChargeErrorType = "invalid_request_error"
	ChargeErrorAPI            ChargeErrorType = "api_error"
	ChargeErrorAuthentication ChargeErrorType = "authentication_error"
	ChargeErrorRateLimit      ChargeErrorType = "rate_limit_error"
	ChargeErrorIdempotency    ChargeErrorType = "idempotency_error"
	ChargeErrorConnection     ChargeErrorType = "api_connection_error"
)

// ChargeError is a processor rejection translated out of the processor SDK.
type ChargeError struct {
	Type    ChargeErrorType
	Code    string
	Message string
	Err     error
}

func (e *ChargeError) Error() string {
	if e.Code != "" {
		return string(e.Type) + " (" + e.Code + "): " + e.Message
	}
	return string(e.Type) + ": " + e.Message
}

func (e *ChargeError) Unwrap() error {
	return e.Err
}

// IsCardError reports whether err is a declined or invalid card.
func IsCardError(err error) bool {
	var chargeErr *ChargeError
	return errors.As(err, &chargeErr) && chargeErr.Type == ChargeErrorCard
}

type ChargeResult struct {
	Id     string
	Amount int64
	Status string
}

type ChargeGateway interface {
	Charge(ctx context.Context, params ChargeParams) (*ChargeResult, error)
}
