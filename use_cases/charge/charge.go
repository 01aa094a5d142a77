package charge

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	protocols "github.com/giovaniif/stripe-charge/protocols"
)

const (
	SuccessMessage = "Payment Successful"
	GenericMessage = "Sorry, an error occurred. Please try again."
)

func NewCharge(chargeGateway protocols.ChargeGateway, logger logrus.FieldLogger) *Charge {
	return &Charge{
		chargeGateway: chargeGateway,
		logger:        logger,
	}
}

func (c *Charge) Charge(ctx context.Context, input Input) (*Output, error) {
	params := input.Params
	if params == nil {
		params = protocols.ChargeParams{}
	}

	result, err := c.chargeGateway.Charge(ctx, params)
	if err != nil {
		c.logger.WithError(err).Warn("charge failed")
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"charge_id": result.Id,
		"amount":    result.Amount,
		"status":    result.Status,
	}).Info("charge created")
	return &Output{Message: SuccessMessage, ChargeId: result.Id}, nil
}

// ErrorMessage returns the text shown to the payer for a failed charge.
// Card errors carry a message written for end users; anything else is hidden.
func ErrorMessage(err error) string {
	var chargeErr *protocols.ChargeError
	if errors.As(err, &chargeErr) && chargeErr.Type == protocols.ChargeErrorCard && chargeErr.Message != "" {
		return chargeErr.Message
	}
	return GenericMessage
}

type Charge struct {
	chargeGateway protocols.ChargeGateway
	logger        logrus.FieldLogger
}

type Input struct {
	Params protocols.ChargeParams
}

type Output struct {
	Message  string
	ChargeId string
}
