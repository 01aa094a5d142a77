package gateways

import (
	"context"
	"errors"
	"net/http"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"

	protocols "github.com/giovaniif/stripe-charge/protocols"
)

type StripeOptions struct {
	SecretKey  string
	APIURL     string
	HTTPClient *http.Client
	Logger     stripe.LeveledLoggerInterface
}

type ChargeGatewayStripe struct {
	client charge.Client
}

func NewChargeGatewayStripe(opts StripeOptions) *ChargeGatewayStripe {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        opts.HTTPClient,
		MaxNetworkRetries: stripe.Int64(0),
	}
	if opts.Logger != nil {
		backendConfig.LeveledLogger = opts.Logger
	}
	if opts.APIURL != "" {
		backendConfig.URL = stripe.String(opts.APIURL)
	}
	return &ChargeGatewayStripe{
		client: charge.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Key: opts.SecretKey,
		},
	}
}

func (s *ChargeGatewayStripe) Charge(ctx context.Context, params protocols.ChargeParams) (*protocols.ChargeResult, error) {
	if ctx.Err() != nil {
		return nil, &protocols.ChargeError{Type: protocols.ChargeErrorConnection, Message: ctx.Err().Error(), Err: ctx.Err()}
	}

	chargeParams, err := stripeChargeParams(params)
	if err != nil {
		return nil, &protocols.ChargeError{Type: protocols.ChargeErrorInvalidRequest, Message: err.Error(), Err: err}
	}
	chargeParams.Context = ctx

	ch, err := s.client.New(chargeParams)
	if err != nil {
		return nil, translateStripeError(err)
	}
	return &protocols.ChargeResult{
		Id:     ch.ID,
		Amount: ch.Amount,
		Status: string(ch.Status),
	}, nil
}

// stripeChargeParams maps well-known fields onto the typed params and forwards
// everything else untouched as extra form values.
func stripeChargeParams(params protocols.ChargeParams) (*stripe.ChargeParams, error) {
	p := &stripe.ChargeParams{}
	for key, value := range params {
		switch key {
		case "amount":
			if amount, ok := toInt64(value); ok {
				p.Amount = stripe.Int64(amount)
				continue
			}
		case "currency", "customer", "description", "receipt_email", "statement_descriptor", "statement_descriptor_suffix":
			if s, ok := value.(string); ok {
				setStringParam(p, key, s)
				continue
			}
		case "source":
			if token, ok := value.(string); ok {
				if err := p.SetSource(token); err != nil {
					return nil, err
				}
				continue
			}
		case "capture":
			if capture, ok := value.(bool); ok {
				p.Capture = stripe.Bool(capture)
				continue
			}
		case "metadata":
			if metadata, ok := value.(map[string]any); ok {
				for k, v := range metadata {
					switch v.(type) {
					case map[string]any, []any:
						flatten("metadata["+k+"]", v, p.AddExtra)
					default:
						p.AddMetadata(k, formValue(v))
					}
				}
				continue
			}
		}
		flatten(key, value, p.AddExtra)
	}
	return p, nil
}

func setStringParam(p *stripe.ChargeParams, key, value string) {
	switch key {
	case "currency":
		p.Currency = stripe.String(value)
	case "customer":
		p.Customer = stripe.String(value)
	case "description":
		p.Description = stripe.String(value)
	case "receipt_email":
		p.ReceiptEmail = stripe.String(value)
	case "statement_descriptor":
		p.StatementDescriptor = stripe.String(value)
	case "statement_descriptor_suffix":
		p.StatementDescriptorSuffix = stripe.String(value)
	}
}

func translateStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &protocols.ChargeError{
			Type:    protocols.ChargeErrorType(stripeErr.Type),
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
			Err:     err,
		}
	}
	return &protocols.ChargeError{Type: protocols.ChargeErrorConnection, Message: err.Error(), Err: err}
}
