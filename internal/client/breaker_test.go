package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPaymentClient struct {
	err   error
	calls int
}

func (s *stubPaymentClient) Name() string { return "stub" }

func (s *stubPaymentClient) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &TransactionResponse{Token: "tok"}, nil
}

func (s *stubPaymentClient) GetStatus(ctx context.Context, orderID, reference string) (*TransactionStatus, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &TransactionStatus{OrderID: orderID, Status: model.StatusPaid}, nil
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubPaymentClient{err: &APIError{Provider: "stub", StatusCode: 503, Message: "down"}}
	c := WithBreaker(stub, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.CreateTransaction(context.Background(), &TransactionRequest{OrderID: "ORD-1"})
		require.Error(t, err)
	}

	_, err := c.CreateTransaction(context.Background(), &TransactionRequest{OrderID: "ORD-1"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, stub.calls)
}

func TestBreaker_IgnoresRejections(t *testing.T) {
	stub := &stubPaymentClient{err: &APIError{Provider: "stub", StatusCode: 400, Message: "bad"}}
	c := WithBreaker(stub, BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := c.CreateTransaction(context.Background(), &TransactionRequest{OrderID: "ORD-1"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
	}
	assert.Equal(t, 3, stub.calls)
}

func TestBreaker_SeparateStatusCircuit(t *testing.T) {
	stub := &stubPaymentClient{err: errors.New("connection refused")}
	c := WithBreaker(stub, BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, zap.NewNop())

	_, err := c.GetStatus(context.Background(), "ORD-1", "")
	require.Error(t, err)
	_, err = c.GetStatus(context.Background(), "ORD-1", "")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	stub.err = nil
	resp, err := c.CreateTransaction(context.Background(), &TransactionRequest{OrderID: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
}

func TestBreaker_ChargeNonce(t *testing.T) {
	c := WithBreaker(&stubPaymentClient{}, DefaultBreakerSettings, zap.NewNop())
	charger, ok := c.(NonceCharger)
	require.True(t, ok)

	_, err := charger.ChargeNonce(context.Background(), "ORD-1", "nonce", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrChargeUnsupported)

	fake := WithBreaker(NewFakeClient(BraintreeProvider, ""), DefaultBreakerSettings, zap.NewNop())
	st, err := fake.(NonceCharger).ChargeNonce(context.Background(), "ORD-1", "fake-valid-nonce", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, st.Status)
}

func TestIsBreakerSuccess(t *testing.T) {
	assert.True(t, isBreakerSuccess(nil))
	assert.True(t, isBreakerSuccess(ErrStatusUnsupported))
	assert.True(t, isBreakerSuccess(&APIError{StatusCode: 404}))
	assert.False(t, isBreakerSuccess(&APIError{StatusCode: 429}))
	assert.False(t, isBreakerSuccess(&APIError{StatusCode: 500}))
	assert.False(t, isBreakerSuccess(context.DeadlineExceeded))
}
