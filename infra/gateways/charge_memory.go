package gateways

import (
	"context"
	"fmt"
	"sync/atomic"

	protocols "github.com/giovaniif/stripe-charge/protocols"
)

// Test tokens that the memory gateway declines, mirroring Stripe test mode.
var declinedTokens = map[string]protocols.ChargeError{
	"tok_chargeDeclined": {
		Type: protocols.ChargeErrorCard, Code: "card_declined", Message: "Your card was declined.",
	},
	"tok_chargeDeclinedExpiredCard": {
		Type: protocols.ChargeErrorCard, Code: "expired_card", Message: "Your card has expired.",
	},
	"tok_chargeDeclinedIncorrectCvc": {
		Type: protocols.ChargeErrorCard, Code: "incorrect_cvc", Message: "Your card's security code is incorrect.",
	},
}

// ChargeGatewayMemory validates charges in-process instead of calling Stripe.
// Only a counter is kept, so accepted charges are not retained.
type ChargeGatewayMemory struct {
	lastId atomic.Int64
}

func NewChargeGatewayMemory() *ChargeGatewayMemory {
	return &ChargeGatewayMemory{}
}

func (c *ChargeGatewayMemory) Charge(ctx context.Context, params protocols.ChargeParams) (*protocols.ChargeResult, error) {
	if ctx.Err() != nil {
		return nil, &protocols.ChargeError{Type: protocols.ChargeErrorConnection, Message: ctx.Err().Error(), Err: ctx.Err()}
	}

	amount, ok := toInt64(params["amount"])
	if !ok {
		return nil, invalidRequest("parameter_missing", "Missing required param: amount.")
	}
	if amount <= 0 {
		return nil, invalidRequest("parameter_invalid_integer", "This value must be greater than or equal to 1.")
	}
	if currency, _ := params["currency"].(string); currency == "" {
		return nil, invalidRequest("parameter_missing", "Missing required param: currency.")
	}
	source, _ := params["source"].(string)
	customer, _ := params["customer"].(string)
	if source == "" && customer == "" {
		return nil, invalidRequest("parameter_missing", "Must provide source or customer.")
	}
	if declined, ok := declinedTokens[source]; ok {
		return nil, &declined
	}

	return &protocols.ChargeResult{
		Id:     fmt.Sprintf("ch_mem_%d", c.lastId.Add(1)),
		Amount: amount,
		Status: "succeeded",
	}, nil
}

func invalidRequest(code, message string) *protocols.ChargeError {
	return &protocols.ChargeError{Type: protocols.ChargeErrorInvalidRequest, Code: code, Message: message}
}
