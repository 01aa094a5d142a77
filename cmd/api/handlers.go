package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	infra "github.com/giovaniif/stripe-charge/infra"
	"github.com/giovaniif/stripe-charge/infra/metrics"
	"github.com/giovaniif/stripe-charge/infra/requestid"
	protocols "github.com/giovaniif/stripe-charge/protocols"
	charge "github.com/giovaniif/stripe-charge/use_cases/charge"
)

const (
	StatusMessage           = "The Stripe charge server is up and running!"
	MethodNotAllowedMessage = "Method Not Allowed"

	// Same layout as JavaScript's Date.prototype.toISOString.
	timestampLayout = "2006-01-02T15:04:05.000Z"

	maxBodyBytes = 1 << 20
)

type StatusResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) dispatch(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.JSON(http.StatusOK, gin.H{})
	case http.MethodGet:
		c.JSON(http.StatusOK, StatusResponse{
			Message:   StatusMessage,
			Timestamp: s.clock.Now().UTC().Format(timestampLayout),
		})
	case http.MethodPost:
		s.handleCharge(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: MethodNotAllowedMessage})
	}
}

func (s *Server) handleCharge(c *gin.Context) {
	log := s.requestLogger(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		log.WithError(err).Warn("failed to read request body")
		metrics.ObserveCharge(metrics.OutcomeError)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: charge.GenericMessage})
		return
	}
	params, err := decodeChargeParams(body)
	if err != nil {
		log.WithError(err).Warn("rejected charge request")
		metrics.ObserveCharge(metrics.OutcomeError)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: charge.GenericMessage})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.chargeTimeout)
	defer cancel()

	chargeUseCase := charge.NewCharge(s.chargeGateway, log)
	output, err := chargeUseCase.Charge(ctx, charge.Input{Params: params})
	if err != nil {
		if protocols.IsCardError(err) {
			metrics.ObserveCharge(metrics.OutcomeCardError)
		} else {
			metrics.ObserveCharge(metrics.OutcomeError)
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: charge.ErrorMessage(err)})
		return
	}

	metrics.ObserveCharge(metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, MessageResponse{Message: output.Message})
}

// decodeChargeParams treats an empty body as an empty parameter set and keeps
// numbers as json.Number so amounts are not rounded through float64.
func decodeChargeParams(body []byte) (protocols.ChargeParams, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return protocols.ChargeParams{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var params protocols.ChargeParams
	if err := decoder.Decode(&params); err != nil {
		return nil, infra.NewInvalidBodyError(err.Error())
	}
	if decoder.More() {
		return nil, infra.NewInvalidBodyError("trailing data after JSON object")
	}
	if params == nil {
		return nil, infra.NewInvalidBodyError("body must be a JSON object")
	}
	return params, nil
}

func (s *Server) requestLogger(c *gin.Context) logrus.FieldLogger {
	return s.logger.WithField("request_id", requestid.FromContext(c.Request.Context()))
}

func (s *Server) corsMiddleware(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Request-Method", "POST, GET")
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
	h.Set("Access-Control-Allow-Origin", s.allowOrigin)
	c.Next()
}

func (s *Server) loggingMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.requestLogger(c).WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}).Info("request handled")
}
