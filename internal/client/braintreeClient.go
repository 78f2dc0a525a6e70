package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/piyol1998/stokcer-sub001/internal/config"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
)

const BraintreeProvider = "braintree"

// NonceCharger is implemented by providers where the browser tokenizes the
// card and the server charges the resulting nonce (Braintree Drop-in).
type NonceCharger interface {
	ChargeNonce(ctx context.Context, orderID, nonce string, amount decimal.Decimal) (*TransactionStatus, error)
}

// ErrChargeUnsupported is returned when the active provider takes no nonces.
var ErrChargeUnsupported = errors.New("provider does not accept payment nonces")

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) PaymentClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return newBraintreeClient(gateway)
}

func newBraintreeClient(gateway *braintree.Braintree) *braintreeClientImpl {
	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Name() string {
	return BraintreeProvider
}

// CreateTransaction issues a client token for Drop-in. No money moves
// until ChargeNonce.
func (c *braintreeClientImpl) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate braintree client token: %w", err)
	}

	return &TransactionResponse{Token: token}, nil
}

func (c *braintreeClientImpl) GetStatus(ctx context.Context, orderID, reference string) (*TransactionStatus, error) {
	return nil, ErrStatusUnsupported
}

func (c *braintreeClientImpl) ChargeNonce(ctx context.Context, orderID, nonce string, amount decimal.Decimal) (*TransactionStatus, error) {
	// Braintree expects NewDecimal(unscaled, scale)
	btAmount := braintree.NewDecimal(amount.Shift(2).Round(0).IntPart(), 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		OrderId:            orderID,
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true, // Captures the funds immediately
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		// validation failures come back as *braintree.BraintreeError
		var apiErr interface{ StatusCode() int }
		if errors.As(err, &apiErr) {
			return nil, &APIError{Provider: BraintreeProvider, StatusCode: apiErr.StatusCode(), Message: err.Error()}
		}
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	status := model.Metadata{
		"transaction_id":     tx.Id,
		"transaction_status": string(tx.Status),
	}
	if tx.ProcessorResponseText != "" {
		status["processor_response"] = tx.ProcessorResponseText
	}

	return &TransactionStatus{
		OrderID:  orderID,
		Status:   BraintreeStatus(tx.Status),
		Metadata: status,
	}, nil
}

func BraintreeStatus(s braintree.TransactionStatus) model.Status {
	switch s {
	case braintree.TransactionStatusSettled,
		braintree.TransactionStatusSettling,
		braintree.TransactionStatusSettlementPending,
		braintree.TransactionStatusSettlementConfirmed,
		braintree.TransactionStatusSubmittedForSettlement:
		return model.StatusPaid
	case braintree.TransactionStatusAuthorizationExpired:
		return model.StatusExpired
	case braintree.TransactionStatusProcessorDeclined,
		braintree.TransactionStatusGatewayRejected,
		braintree.TransactionStatusFailed,
		braintree.TransactionStatusVoided,
		braintree.TransactionStatusSettlementDeclined:
		return model.StatusFailed
	default:
		return model.StatusPending
	}
}
