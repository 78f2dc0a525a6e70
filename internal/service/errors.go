package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidPayload = errors.New("invalid webhook payload")
	errNoToken        = errors.New("provider returned no usable token")
)

// PaymentInitError means no payment session could be opened. UserMessage is
// safe to show the shopper.
type PaymentInitError struct {
	Provider    string
	OrderID     string
	UserMessage string
	Err         error
}

func (e *PaymentInitError) Error() string {
	return fmt.Sprintf("init %s payment for %s: %v", e.Provider, e.OrderID, e.Err)
}

func (e *PaymentInitError) Unwrap() error {
	return e.Err
}

func newPaymentInitError(provider, orderID string, err error) *PaymentInitError {
	msg := "could not reach the payment provider, please try again"
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		msg = apiErr.Message
	case errors.Is(err, errNoToken):
		msg = "the payment provider did not return a payment session"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		msg = "the payment provider is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "the payment provider took too long to respond"
	}

	return &PaymentInitError{
		Provider:    provider,
		OrderID:     orderID,
		UserMessage: msg,
		Err:         err,
	}
}

// ReconciliationError is a failed status update. Callers log it and carry on.
type ReconciliationError struct {
	OrderID string
	Err     error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile order %s: %v", e.OrderID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
