package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/piyol1998/stokcer-sub001/internal/metrics"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/piyol1998/stokcer-sub001/internal/notify"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"go.uber.org/zap"
)

type ReconcileSettings struct {
	Interval  time.Duration
	MinAge    time.Duration
	BatchSize int
}

type ReconcileService interface {
	// UpdateStatus mirrors a provider-reported status onto the local session.
	// Repeating a call is harmless.
	UpdateStatus(ctx context.Context, orderID string, status model.Status, metadata model.Metadata) error
	HandleMidtransNotification(ctx context.Context, n *model.MidtransNotification) error
	HandleStripeEvent(ctx context.Context, event *model.StripeEvent) error
	// Sweep polls the provider for pending sessions and returns how many
	// were resolved.
	Sweep(ctx context.Context) (int, error)
	Run(ctx context.Context)
}

type reconcileServiceImpl struct {
	sessions  repository.CheckoutSessionRepository
	webhooks  repository.WebhookEventRepository
	payment   client.PaymentClient
	publisher notify.Publisher
	settings  ReconcileSettings
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewReconcileService(
	sessions repository.CheckoutSessionRepository,
	webhooks repository.WebhookEventRepository,
	payment client.PaymentClient,
	publisher notify.Publisher,
	settings ReconcileSettings,
	m *metrics.Metrics,
	logger *zap.Logger,
) ReconcileService {
	if settings.BatchSize <= 0 {
		settings.BatchSize = 50
	}
	if settings.Interval <= 0 {
		settings.Interval = time.Minute
	}
	return &reconcileServiceImpl{
		sessions:  sessions,
		webhooks:  webhooks,
		payment:   payment,
		publisher: publisher,
		settings:  settings,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *reconcileServiceImpl) UpdateStatus(ctx context.Context, orderID string, status model.Status, metadata model.Metadata) error {
	return s.update(ctx, "direct", orderID, status, metadata)
}

func (s *reconcileServiceImpl) update(ctx context.Context, source, orderID string, status model.Status, metadata model.Metadata) error {
	if !status.Valid() {
		s.metrics.Reconciliation(source, "error")
		return &ReconciliationError{OrderID: orderID, Err: fmt.Errorf("invalid status %q", status)}
	}

	written, err := s.sessions.UpdateStatus(ctx, orderID, status, metadata)
	if err != nil {
		s.metrics.Reconciliation(source, "error")
		return &ReconciliationError{OrderID: orderID, Err: err}
	}
	if !written {
		s.metrics.Reconciliation(source, "noop")
		return nil
	}

	s.metrics.Reconciliation(source, "updated")
	s.logger.Info("checkout session status updated",
		zap.String("order_id", orderID),
		zap.String("status", status.String()),
		zap.String("source", source))

	session, err := s.sessions.FindByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Warn("reload checkout session failed", zap.String("order_id", orderID), zap.Error(err))
		return nil
	}
	event := notify.Event{
		Type:       notify.EventSessionStatusChanged,
		OrderID:    orderID,
		UserID:     session.UserID,
		Provider:   session.Provider,
		Status:     status.String(),
		Amount:     session.Amount,
		Currency:   session.Currency,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish status event failed", zap.String("order_id", orderID), zap.Error(err))
	}
	return nil
}

func (s *reconcileServiceImpl) HandleMidtransNotification(ctx context.Context, n *model.MidtransNotification) error {
	if n.OrderID == "" || n.TransactionStatus == "" {
		return ErrInvalidPayload
	}

	eventID := n.TransactionID
	if eventID == "" {
		eventID = n.OrderID
	}
	// one notification per transition
	eventID += ":" + n.TransactionStatus

	status := client.MidtransStatus(n.TransactionStatus, n.FraudStatus)
	return s.handleEvent(ctx, client.MidtransProvider, eventID, n.TransactionStatus,
		n.OrderID, status, client.MidtransMetadata(n))
}

func (s *reconcileServiceImpl) HandleStripeEvent(ctx context.Context, event *model.StripeEvent) error {
	if event.ID == "" || event.Type == "" {
		return ErrInvalidPayload
	}

	var status model.Status
	switch event.Type {
	case "checkout.session.completed":
		status = client.StripeStatus(&event.Data.Object)
	case "checkout.session.async_payment_succeeded":
		status = model.StatusPaid
	case "checkout.session.async_payment_failed":
		status = model.StatusFailed
	case "checkout.session.expired":
		status = model.StatusExpired
	default:
		s.metrics.Reconciliation("webhook", "ignored")
		return nil
	}

	session := &event.Data.Object
	orderID := session.ClientReferenceID
	if orderID == "" {
		orderID = session.Metadata["order_id"]
	}
	if orderID == "" {
		return ErrInvalidPayload
	}

	return s.handleEvent(ctx, client.StripeProvider, event.ID, event.Type,
		orderID, status, client.StripeMetadata(session))
}

// handleEvent applies a webhook once. The event is marked processed only
// after the update lands.
func (s *reconcileServiceImpl) handleEvent(ctx context.Context, provider, eventID, eventType, orderID string, status model.Status, metadata model.Metadata) error {
	seen, err := s.webhooks.Exists(ctx, provider, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event %s: %w", eventID, err)
	}
	if seen {
		s.metrics.Reconciliation("webhook", "duplicate")
		return nil
	}

	if err := s.update(ctx, "webhook", orderID, status, metadata); err != nil {
		return err
	}

	if err := s.webhooks.MarkProcessed(ctx, provider, eventID, eventType); err != nil {
		s.logger.Warn("mark webhook event processed failed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
	return nil
}

func (s *reconcileServiceImpl) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.settings.MinAge)
	pending, err := s.sessions.ListPending(ctx, s.payment.Name(), cutoff, s.settings.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending sessions: %w", err)
	}

	resolved := 0
	for _, session := range pending {
		if ctx.Err() != nil {
			return resolved, ctx.Err()
		}

		st, err := s.payment.GetStatus(ctx, session.OrderID, session.ProviderToken)
		if errors.Is(err, client.ErrStatusUnsupported) {
			return resolved, nil
		}
		if err != nil {
			s.logger.Warn("poll payment status failed",
				zap.String("order_id", session.OrderID),
				zap.Error(err))
			continue
		}
		if !st.Status.IsTerminal() {
			continue
		}

		if err := s.update(ctx, "sweep", session.OrderID, st.Status, st.Metadata); err != nil {
			s.logger.Error("sweep update failed", zap.Error(err))
			continue
		}
		resolved++
	}

	return resolved, nil
}

func (s *reconcileServiceImpl) Run(ctx context.Context) {
	ticker := time.NewTicker(s.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.Error("reconcile sweep failed", zap.Error(err))
			}
			if n > 0 {
				s.logger.Info("reconcile sweep resolved sessions", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
