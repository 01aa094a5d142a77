package charge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	protocols "github.com/giovaniif/stripe-charge/protocols"
)

type mockChargeGateway struct {
	charged   []protocols.ChargeParams
	result    *protocols.ChargeResult
	chargeErr error
}

func (m *mockChargeGateway) Charge(ctx context.Context, params protocols.ChargeParams) (*protocols.ChargeResult, error) {
	m.charged = append(m.charged, params)
	if m.chargeErr != nil {
		return nil, m.chargeErr
	}
	return m.result, nil
}

func TestChargeSuccess(t *testing.T) {
	chargeGateway := &mockChargeGateway{result: &protocols.ChargeResult{Id: "ch_1", Amount: 1000, Status: "succeeded"}}
	logger, hook := logtest.NewNullLogger()
	uc := NewCharge(chargeGateway, logger)

	output, err := uc.Charge(context.Background(), Input{
		Params: protocols.ChargeParams{"amount": 1000, "currency": "usd", "source": "tok_visa"},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(chargeGateway.charged) != 1 {
		t.Fatalf("expected Charge to be called once, got %d", len(chargeGateway.charged))
	}
	if chargeGateway.charged[0]["source"] != "tok_visa" {
		t.Fatalf("expected params to be passed through, got %v", chargeGateway.charged[0])
	}
	if output.Message != "Payment Successful" {
		t.Fatalf("expected message 'Payment Successful', got %s", output.Message)
	}
	if output.ChargeId != "ch_1" {
		t.Fatalf("expected charge id 'ch_1', got %s", output.ChargeId)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.InfoLevel {
		t.Fatalf("expected an info log entry for the created charge")
	}
}

func TestChargeWithNilParams(t *testing.T) {
	chargeGateway := &mockChargeGateway{result: &protocols.ChargeResult{Id: "ch_2"}}
	logger, _ := logtest.NewNullLogger()
	uc := NewCharge(chargeGateway, logger)

	_, err := uc.Charge(context.Background(), Input{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if chargeGateway.charged[0] == nil {
		t.Fatalf("expected empty params instead of nil")
	}
	if len(chargeGateway.charged[0]) != 0 {
		t.Fatalf("expected empty params, got %v", chargeGateway.charged[0])
	}
}

func TestChargeWithGatewayError(t *testing.T) {
	chargeGateway := &mockChargeGateway{chargeErr: errors.New("charge gateway error")}
	logger, hook := logtest.NewNullLogger()
	uc := NewCharge(chargeGateway, logger)

	output, err := uc.Charge(context.Background(), Input{Params: protocols.ChargeParams{}})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if err.Error() != "charge gateway error" {
		t.Fatalf("expected error 'charge gateway error', got %v", err)
	}
	if output != nil {
		t.Fatalf("expected nil output on error, got %+v", output)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("expected a warning log entry for the failed charge")
	}
}

func TestErrorMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{
			"card error",
			&protocols.ChargeError{Type: protocols.ChargeErrorCard, Code: "invalid_expiry_year", Message: "Your card's expiration year is invalid."},
			"Your card's expiration year is invalid.",
		},
		{
			"wrapped card error",
			fmt.Errorf("stripe: %w", &protocols.ChargeError{Type: protocols.ChargeErrorCard, Message: "Your card was declined."}),
			"Your card was declined.",
		},
		{
			"card error without message",
			&protocols.ChargeError{Type: protocols.ChargeErrorCard},
			GenericMessage,
		},
		{
			"invalid request",
			&protocols.ChargeError{Type: protocols.ChargeErrorInvalidRequest, Message: "Missing required param: amount."},
			GenericMessage,
		},
		{
			"authentication",
			&protocols.ChargeError{Type: protocols.ChargeErrorAuthentication, Message: "Invalid API Key provided"},
			GenericMessage,
		},
		{"plain error", errors.New("boom"), GenericMessage},
		{"deadline", context.DeadlineExceeded, GenericMessage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if msg := ErrorMessage(tc.err); msg != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, msg)
			}
		})
	}
}
