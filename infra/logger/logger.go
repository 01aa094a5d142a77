package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/giovaniif/stripe-charge/infra/loki"
)

type Options struct {
	Level       string
	Format      string
	LokiURL     string
	ServiceName string
}

// New builds the service logger. The returned close function flushes the Loki
// writer when one is configured.
func New(opts Options) (*logrus.Logger, func() error, error) {
	return newWithOutput(opts, os.Stdout)
}

func newWithOutput(opts Options, out io.Writer) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	if opts.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	closeFn := func() error { return nil }
	if w := loki.NewWriter(opts.LokiURL, map[string]string{"job": opts.ServiceName}); w != nil {
		log.SetOutput(io.MultiWriter(out, w))
		closeFn = w.Close
	} else {
		log.SetOutput(out)
	}
	return log, closeFn, nil
}
