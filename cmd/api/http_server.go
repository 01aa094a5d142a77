package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/giovaniif/stripe-charge/infra/config"
	"github.com/giovaniif/stripe-charge/infra/gateways"
	"github.com/giovaniif/stripe-charge/infra/logger"
	"github.com/giovaniif/stripe-charge/infra/metrics"
	"github.com/giovaniif/stripe-charge/infra/requestid"
	"github.com/giovaniif/stripe-charge/infra/tracing"
	protocols "github.com/giovaniif/stripe-charge/protocols"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	ChargeGateway protocols.ChargeGateway
	Clock         protocols.Clock
	Logger        logrus.FieldLogger
	AllowOrigin   string
	ChargeTimeout time.Duration
}

type Server struct {
	router        *gin.Engine
	chargeGateway protocols.ChargeGateway
	clock         protocols.Clock
	logger        logrus.FieldLogger
	allowOrigin   string
	chargeTimeout time.Duration
}

func NewServer(opts Options) *Server {
	s := &Server{
		router:        gin.New(),
		chargeGateway: opts.ChargeGateway,
		clock:         opts.Clock,
		logger:        opts.Logger,
		allowOrigin:   opts.AllowOrigin,
		chargeTimeout: opts.ChargeTimeout,
	}
	if s.clock == nil {
		s.clock = gateways.NewClock()
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.chargeTimeout <= 0 {
		s.chargeTimeout = 30 * time.Second
	}

	r := s.router
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), requestid.Middleware, tracing.Middleware, metrics.Middleware, s.loggingMiddleware, s.corsMiddleware)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// The charge endpoint answers on every other path, switching on method only.
	r.Any("/", s.dispatch)
	r.NoRoute(s.dispatch)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func newChargeGateway(cfg *config.Config, log *logrus.Logger) protocols.ChargeGateway {
	if cfg.ChargeGateway == config.GatewayMemory {
		log.Warn("using in-memory charge gateway, no money will move")
		return gateways.NewChargeGatewayMemory()
	}
	return gateways.NewChargeGatewayStripe(gateways.StripeOptions{
		SecretKey: cfg.StripeSecretKey,
		APIURL:    cfg.StripeAPIURL,
		HTTPClient: &http.Client{
			Timeout:   cfg.ChargeTimeout,
			Transport: &tracing.Transport{},
		},
		Logger: log,
	})
}

// StartServer runs the charge server until SIGINT or SIGTERM.
func StartServer() error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		LokiURL:     cfg.LokiURL,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.WithError(err).Warn("tracing disabled")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	server := NewServer(Options{
		ChargeGateway: newChargeGateway(cfg, log),
		Clock:         gateways.NewClock(),
		Logger:        log,
		AllowOrigin:   cfg.StripeAllowDomain,
		ChargeTimeout: cfg.ChargeTimeout,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr()).Info("charge server listening")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
