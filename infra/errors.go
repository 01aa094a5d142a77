package infra

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBody = errors.New("invalid request body")
	ErrConfig      = errors.New("invalid configuration")
)

func NewInvalidBodyError(details string) error {
	return fmt.Errorf("%w: %s", ErrInvalidBody, details)
}

func NewConfigError(details string) error {
	return fmt.Errorf("%w: %s", ErrConfig, details)
}
