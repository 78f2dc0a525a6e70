package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// PaymentClient is one payment provider strategy.
type PaymentClient interface {
	Name() string
	// CreateTransaction asks the provider for a payment session for one order.
	CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error)
	// GetStatus polls the provider. reference is the provider token stored
	// with the session; providers that key by order id ignore it.
	GetStatus(ctx context.Context, orderID, reference string) (*TransactionStatus, error)
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type TransactionRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	ItemName string
	Customer CustomerDetails
	Metadata map[string]string
}

type TransactionResponse struct {
	// Token is the Snap token, Stripe session id or Braintree client token.
	Token       string
	RedirectURL string
}

type TransactionStatus struct {
	OrderID  string
	Status   model.Status
	Metadata model.Metadata
}

// ErrStatusUnsupported is returned by providers without a status API.
var ErrStatusUnsupported = errors.New("provider does not support status polling")

// APIError is a non-2xx provider response. Message is meant for the shopper.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether the provider itself is failing, as opposed to
// rejecting the request.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
