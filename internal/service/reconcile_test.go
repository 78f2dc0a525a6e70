package service

import (
	"context"
	"testing"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/piyol1998/stokcer-sub001/internal/notify"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reconcileFixture struct {
	svc       *reconcileServiceImpl
	sessions  repository.CheckoutSessionRepository
	webhooks  repository.WebhookEventRepository
	publisher *recordingPublisher
}

func newReconcileFixture(t *testing.T, payment client.PaymentClient) *reconcileFixture {
	t.Helper()
	db := newTestDB(t)
	f := &reconcileFixture{
		sessions:  repository.NewCheckoutSessionRepository(db),
		webhooks:  repository.NewWebhookEventRepository(db),
		publisher: &recordingPublisher{},
	}
	f.svc = NewReconcileService(f.sessions, f.webhooks, payment, f.publisher,
		ReconcileSettings{Interval: 10 * time.Millisecond, MinAge: 2 * time.Minute}, nil, zap.NewNop()).(*reconcileServiceImpl)
	return f
}

func (f *reconcileFixture) seed(t *testing.T, orderID, provider string, age time.Duration) {
	t.Helper()
	err := f.sessions.Create(context.Background(), &model.CheckoutSession{
		OrderID:       orderID,
		UserID:        "user-1",
		Reference:     "starter",
		Provider:      provider,
		Amount:        decimal.NewFromInt(99000),
		Currency:      "IDR",
		Status:        model.StatusPending,
		ProviderToken: "tok-" + orderID,
		CreatedAt:     time.Now().Add(-age),
	})
	require.NoError(t, err)
}

func (f *reconcileFixture) status(t *testing.T, orderID string) *model.CheckoutSession {
	t.Helper()
	s, err := f.sessions.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return s
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))
	f.seed(t, "SUB-1", client.MidtransProvider, time.Hour)
	ctx := context.Background()
	m := model.Metadata{"transaction_id": "tx-1"}

	require.NoError(t, f.svc.UpdateStatus(ctx, "SUB-1", model.StatusPaid, m))
	require.NoError(t, f.svc.UpdateStatus(ctx, "SUB-1", model.StatusPaid, m))

	s := f.status(t, "SUB-1")
	assert.Equal(t, model.StatusPaid, s.Status)
	assert.True(t, m.Equal(s.Metadata))

	changed := f.publisher.ofType(notify.EventSessionStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "paid", changed[0].Status)
	assert.Equal(t, "user-1", changed[0].UserID)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))

	err := f.svc.UpdateStatus(context.Background(), "SUB-missing", model.StatusPaid, nil)

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "SUB-missing", recErr.OrderID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))
	f.seed(t, "SUB-1", client.MidtransProvider, time.Hour)

	err := f.svc.UpdateStatus(context.Background(), "SUB-1", model.Status("refunded"), nil)
	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, model.StatusPending, f.status(t, "SUB-1").Status)
}

func TestUpdateStatus_StalePendingIgnored(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))
	f.seed(t, "SUB-1", client.MidtransProvider, time.Hour)
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateStatus(ctx, "SUB-1", model.StatusPaid, model.Metadata{"a": "1"}))
	require.NoError(t, f.svc.UpdateStatus(ctx, "SUB-1", model.StatusPending, model.Metadata{"a": "2"}))

	s := f.status(t, "SUB-1")
	assert.Equal(t, model.StatusPaid, s.Status)
	assert.Equal(t, "1", s.Metadata["a"])
}

func TestHandleMidtransNotification(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))
	f.seed(t, "SUB-1", client.MidtransProvider, time.Hour)
	ctx := context.Background()

	n := &model.MidtransNotification{
		TransactionID:     "tx-1",
		TransactionStatus: "settlement",
		OrderID:           "SUB-1",
		PaymentType:       "qris",
		GrossAmount:       "99000.00",
	}
	require.NoError(t, f.svc.HandleMidtransNotification(ctx, n))

	s := f.status(t, "SUB-1")
	assert.Equal(t, model.StatusPaid, s.Status)
	assert.Equal(t, "qris", s.Metadata["payment_type"])

	seen, err := f.webhooks.Exists(ctx, client.MidtransProvider, "tx-1:settlement")
	require.NoError(t, err)
	assert.True(t, seen)

	// redelivery is a no-op
	require.NoError(t, f.svc.HandleMidtransNotification(ctx, n))
	assert.Len(t, f.publisher.ofType(notify.EventSessionStatusChanged), 1)
}

func TestHandleMidtransNotification_Expire(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))
	f.seed(t, "SUB-1", client.MidtransProvider, time.Hour)

	err := f.svc.HandleMidtransNotification(context.Background(), &model.MidtransNotification{
		TransactionID: "tx-1", TransactionStatus: "expire", OrderID: "SUB-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, f.status(t, "SUB-1").Status)
}

func TestHandleMidtransNotification_UnknownOrder(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))
	ctx := context.Background()

	err := f.svc.HandleMidtransNotification(ctx, &model.MidtransNotification{
		TransactionID: "tx-9", TransactionStatus: "settlement", OrderID: "SUB-missing",
	})
	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)

	seen, err := f.webhooks.Exists(ctx, client.MidtransProvider, "tx-9:settlement")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestHandleMidtransNotification_Invalid(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.MidtransProvider, ""))

	err := f.svc.HandleMidtransNotification(context.Background(), &model.MidtransNotification{TransactionStatus: "settlement"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestHandleStripeEvent(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.StripeProvider, ""))
	f.seed(t, "ORD-1", client.StripeProvider, time.Hour)
	f.seed(t, "ORD-2", client.StripeProvider, time.Hour)
	ctx := context.Background()

	err := f.svc.HandleStripeEvent(ctx, &model.StripeEvent{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Data: model.StripeEventData{Object: model.StripeCheckoutSession{
			ID: "cs_1", ClientReferenceID: "ORD-1", Status: "complete", PaymentStatus: "paid", PaymentIntent: "pi_1",
		}},
	})
	require.NoError(t, err)
	s := f.status(t, "ORD-1")
	assert.Equal(t, model.StatusPaid, s.Status)
	assert.Equal(t, "pi_1", s.Metadata["payment_intent"])

	// order id falls back to metadata
	err = f.svc.HandleStripeEvent(ctx, &model.StripeEvent{
		ID:   "evt_2",
		Type: "checkout.session.expired",
		Data: model.StripeEventData{Object: model.StripeCheckoutSession{
			ID: "cs_2", Status: "expired", Metadata: map[string]string{"order_id": "ORD-2"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, f.status(t, "ORD-2").Status)
}

func TestHandleStripeEvent_AsyncPayment(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.StripeProvider, ""))
	f.seed(t, "ORD-1", client.StripeProvider, time.Hour)
	ctx := context.Background()

	completed := &model.StripeEvent{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Data: model.StripeEventData{Object: model.StripeCheckoutSession{
			ID: "cs_1", ClientReferenceID: "ORD-1", Status: "complete", PaymentStatus: "unpaid",
		}},
	}
	require.NoError(t, f.svc.HandleStripeEvent(ctx, completed))
	assert.Equal(t, model.StatusPending, f.status(t, "ORD-1").Status)

	failed := &model.StripeEvent{
		ID:   "evt_2",
		Type: "checkout.session.async_payment_failed",
		Data: completed.Data,
	}
	require.NoError(t, f.svc.HandleStripeEvent(ctx, failed))
	assert.Equal(t, model.StatusFailed, f.status(t, "ORD-1").Status)
}

func TestHandleStripeEvent_IgnoredAndInvalid(t *testing.T) {
	f := newReconcileFixture(t, client.NewFakeClient(client.StripeProvider, ""))
	ctx := context.Background()

	assert.NoError(t, f.svc.HandleStripeEvent(ctx, &model.StripeEvent{ID: "evt_1", Type: "customer.created"}))
	assert.ErrorIs(t, f.svc.HandleStripeEvent(ctx, &model.StripeEvent{Type: "checkout.session.completed"}), ErrInvalidPayload)
	assert.ErrorIs(t, f.svc.HandleStripeEvent(ctx, &model.StripeEvent{ID: "evt_2", Type: "checkout.session.expired"}), ErrInvalidPayload)
}

func TestSweep(t *testing.T) {
	fake := client.NewFakeClient(client.MidtransProvider, "")
	f := newReconcileFixture(t, fake)
	f.seed(t, "SUB-paid", client.MidtransProvider, time.Hour)
	f.seed(t, "SUB-waiting", client.MidtransProvider, time.Hour)
	f.seed(t, "SUB-fresh", client.MidtransProvider, 0)
	f.seed(t, "ORD-other", client.StripeProvider, time.Hour)

	fake.Resolve("SUB-paid", model.StatusPaid)
	fake.Resolve("SUB-waiting", model.StatusPending)
	fake.Resolve("SUB-fresh", model.StatusPaid)

	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, model.StatusPaid, f.status(t, "SUB-paid").Status)
	assert.Equal(t, model.StatusPending, f.status(t, "SUB-waiting").Status)
	assert.Equal(t, model.StatusPending, f.status(t, "SUB-fresh").Status)
	assert.Equal(t, model.StatusPending, f.status(t, "ORD-other").Status)
}

func TestSweep_ProviderErrorsSkipped(t *testing.T) {
	fake := client.NewFakeClient(client.MidtransProvider, "")
	f := newReconcileFixture(t, fake)
	f.seed(t, "SUB-unknown", client.MidtransProvider, time.Hour)
	f.seed(t, "SUB-paid", client.MidtransProvider, 2*time.Hour)
	fake.Resolve("SUB-paid", model.StatusPaid)

	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSweep_StatusUnsupported(t *testing.T) {
	f := newReconcileFixture(t, &stubPayment{name: client.BraintreeProvider, statusErr: client.ErrStatusUnsupported})
	f.seed(t, "SUB-1", client.BraintreeProvider, time.Hour)

	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_StopsOnCancel(t *testing.T) {
	fake := client.NewFakeClient(client.MidtransProvider, "")
	f := newReconcileFixture(t, fake)
	f.seed(t, "SUB-1", client.MidtransProvider, time.Hour)
	fake.Resolve("SUB-1", model.StatusPaid)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		s, err := f.sessions.FindByOrderID(context.Background(), "SUB-1")
		return err == nil && s.Status == model.StatusPaid
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
