package client

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

type breakerClient struct {
	inner  PaymentClient
	create *gobreaker.CircuitBreaker[*TransactionResponse]
	status *gobreaker.CircuitBreaker[*TransactionStatus]
}

// WithBreaker guards the provider calls of inner with a circuit breaker.
// Requests the provider rejects (4xx) do not count against it.
func WithBreaker(inner PaymentClient, s BreakerSettings, logger *zap.Logger) PaymentClient {
	settings := func(op string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        inner.Name() + "." + op,
			MaxRequests: 1,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.ConsecutiveFailures
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("payment circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}
	}

	return &breakerClient{
		inner:  inner,
		create: gobreaker.NewCircuitBreaker[*TransactionResponse](settings("create")),
		status: gobreaker.NewCircuitBreaker[*TransactionStatus](settings("status")),
	}
}

func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrStatusUnsupported) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Temporary()
	}
	return false
}

func (b *breakerClient) Name() string {
	return b.inner.Name()
}

func (b *breakerClient) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	return b.create.Execute(func() (*TransactionResponse, error) {
		return b.inner.CreateTransaction(ctx, req)
	})
}

func (b *breakerClient) GetStatus(ctx context.Context, orderID, reference string) (*TransactionStatus, error) {
	return b.status.Execute(func() (*TransactionStatus, error) {
		return b.inner.GetStatus(ctx, orderID, reference)
	})
}

// ChargeNonce passes through unguarded.
func (b *breakerClient) ChargeNonce(ctx context.Context, orderID, nonce string, amount decimal.Decimal) (*TransactionStatus, error) {
	charger, ok := b.inner.(NonceCharger)
	if !ok {
		return nil, ErrChargeUnsupported
	}
	return charger.ChargeNonce(ctx, orderID, nonce, amount)
}
