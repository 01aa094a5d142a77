package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	infra "github.com/giovaniif/stripe-charge/infra"
)

const (
	GatewayStripe = "stripe"
	GatewayMemory = "memory"
)

type Config struct {
	Port              string
	StripeSecretKey   string
	StripeAllowDomain string
	StripeAPIURL      string
	ChargeGateway     string
	ChargeTimeout     time.Duration
	LogLevel          string
	LogFormat         string
	LokiURL           string
	OTLPEndpoint      string
	ServiceName       string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_ALLOW_DOMAIN", "")
	v.SetDefault("STRIPE_API_URL", "")
	v.SetDefault("CHARGE_GATEWAY", GatewayStripe)
	v.SetDefault("CHARGE_TIMEOUT_SECONDS", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("SERVICE_NAME", "stripe-charge")
}

// Load reads configuration from the environment, falling back to a .env file
// in dir when one exists. Environment variables take precedence.
func Load(dir string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		v.SetConfigFile(envPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, infra.NewConfigError("reading " + envPath + ": " + err.Error())
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, infra.NewConfigError(err.Error())
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		StripeSecretKey:   v.GetString("STRIPE_SECRET_KEY"),
		StripeAllowDomain: v.GetString("STRIPE_ALLOW_DOMAIN"),
		StripeAPIURL:      v.GetString("STRIPE_API_URL"),
		ChargeGateway:     v.GetString("CHARGE_GATEWAY"),
		ChargeTimeout:     time.Duration(v.GetInt("CHARGE_TIMEOUT_SECONDS")) * time.Second,
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		LokiURL:           v.GetString("LOKI_URL"),
		OTLPEndpoint:      v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:       v.GetString("SERVICE_NAME"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return infra.NewConfigError("PORT is empty")
	}
	switch c.ChargeGateway {
	case GatewayStripe:
		if c.StripeSecretKey == "" {
			return infra.NewConfigError("STRIPE_SECRET_KEY is required for the stripe gateway")
		}
	case GatewayMemory:
	default:
		return infra.NewConfigError("unknown CHARGE_GATEWAY " + c.ChargeGateway)
	}
	if c.ChargeTimeout <= 0 {
		return infra.NewConfigError("CHARGE_TIMEOUT_SECONDS must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return infra.NewConfigError(err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return infra.NewConfigError("LOG_FORMAT must be text or json")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
