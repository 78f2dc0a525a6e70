package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/piyol1998/stokcer-sub001/internal/metrics"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/piyol1998/stokcer-sub001/internal/notify"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SessionResult struct {
	OrderID     string
	Token       string
	RedirectURL string
	Provider    string
	Amount      decimal.Decimal
	Currency    string
}

// StatusUpdater is the reconciler entry point checkout uses after an
// in-page charge.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, status model.Status, metadata model.Metadata) error
}

type CheckoutService interface {
	CreateSession(ctx context.Context, user *model.User, planCode string) (*SessionResult, error)
	CreateCartSession(ctx context.Context, user *model.User, sessionID string) (*SessionResult, error)
	GetSession(ctx context.Context, orderID string) (*model.CheckoutSession, error)
	// ChargeNonce settles a drop-in checkout (Braintree) with the nonce the
	// browser produced.
	ChargeNonce(ctx context.Context, orderID, nonce string) (*model.CheckoutSession, error)
}

type checkoutServiceImpl struct {
	payment   client.PaymentClient
	plans     repository.PlanRepository
	sessions  repository.CheckoutSessionRepository
	carts     CartService
	updater   StatusUpdater
	publisher notify.Publisher
	ids       *OrderIDGenerator
	currency  string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewCheckoutService(
	payment client.PaymentClient,
	plans repository.PlanRepository,
	sessions repository.CheckoutSessionRepository,
	carts CartService,
	updater StatusUpdater,
	publisher notify.Publisher,
	ids *OrderIDGenerator,
	storeCurrency string,
	m *metrics.Metrics,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		payment:   payment,
		plans:     plans,
		sessions:  sessions,
		carts:     carts,
		updater:   updater,
		publisher: publisher,
		ids:       ids,
		currency:  storeCurrency,
		metrics:   m,
		logger:    logger,
	}
}

func (s *checkoutServiceImpl) CreateSession(ctx context.Context, user *model.User, planCode string) (*SessionResult, error) {
	plan, err := s.plans.GetPlanByCode(ctx, planCode)
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", planCode, err)
	}

	orderID := s.ids.Next(PlanOrderPrefix, user.ID)
	return s.start(ctx, user, plan.Code, &client.TransactionRequest{
		OrderID:  orderID,
		Amount:   plan.Price,
		Currency: plan.Currency,
		ItemName: plan.Name,
		Customer: customerDetails(user),
		Metadata: map[string]string{"reference": plan.Code, "kind": "plan"},
	})
}

func (s *checkoutServiceImpl) CreateCartSession(ctx context.Context, user *model.User, sessionID string) (*SessionResult, error) {
	c := s.carts.Get(ctx, sessionID)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := c.Items()
	itemName := fmt.Sprintf("Stokcer order (%d items)", c.Count())
	if len(items) == 1 && items[0].Quantity == 1 {
		itemName = items[0].Name()
	}

	orderID := s.ids.Next(CartOrderPrefix, user.ID)
	res, err := s.start(ctx, user, "cart", &client.TransactionRequest{
		OrderID:  orderID,
		Amount:   c.Total(),
		Currency: s.currency,
		ItemName: itemName,
		Customer: customerDetails(user),
		Metadata: map[string]string{
			"reference": "cart",
			"kind":      "cart",
			"items":     strconv.Itoa(c.Count()),
		},
	})
	if err != nil {
		return nil, err
	}

	s.carts.Clear(ctx, sessionID)
	return res, nil
}

// start opens the provider session and records it. No row is written
// unless the provider handed back a token.
func (s *checkoutServiceImpl) start(ctx context.Context, user *model.User, reference string, req *client.TransactionRequest) (*SessionResult, error) {
	provider := s.payment.Name()

	resp, err := s.payment.CreateTransaction(ctx, req)
	if err == nil && resp.Token == "" {
		err = errNoToken
	}
	if err != nil {
		s.metrics.CheckoutSession(provider, "failed")
		s.logger.Warn("payment session init failed",
			zap.String("order_id", req.OrderID),
			zap.String("provider", provider),
			zap.Error(err))
		return nil, newPaymentInitError(provider, req.OrderID, err)
	}

	session := &model.CheckoutSession{
		OrderID:       req.OrderID,
		UserID:        user.ID,
		Reference:     reference,
		Provider:      provider,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        model.StatusPending,
		ProviderToken: resp.Token,
		RedirectURL:   resp.RedirectURL,
		Metadata:      model.Metadata(req.Metadata),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		// the provider remains the source of truth
		s.logger.Error("record checkout session failed",
			zap.String("order_id", req.OrderID),
			zap.Error(err))
	}

	s.metrics.CheckoutSession(provider, "created")
	s.publish(ctx, notify.Event{
		Type:       notify.EventSessionCreated,
		OrderID:    req.OrderID,
		UserID:     user.ID,
		Provider:   provider,
		Status:     model.StatusPending.String(),
		Amount:     req.Amount,
		Currency:   req.Currency,
		OccurredAt: time.Now(),
	})

	return &SessionResult{
		OrderID:     req.OrderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Provider:    provider,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}, nil
}

func (s *checkoutServiceImpl) GetSession(ctx context.Context, orderID string) (*model.CheckoutSession, error) {
	session, err := s.sessions.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find checkout session %s: %w", orderID, err)
	}
	return session, nil
}

func (s *checkoutServiceImpl) ChargeNonce(ctx context.Context, orderID, nonce string) (*model.CheckoutSession, error) {
	session, err := s.GetSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return session, nil
	}

	charger, ok := s.payment.(client.NonceCharger)
	if !ok {
		return nil, client.ErrChargeUnsupported
	}

	st, err := charger.ChargeNonce(ctx, orderID, nonce, session.Amount)
	if err != nil {
		return nil, newPaymentInitError(s.payment.Name(), orderID, err)
	}

	if err := s.updater.UpdateStatus(ctx, orderID, st.Status, st.Metadata); err != nil {
		s.logger.Error("record charge result failed", zap.Error(err))
	}

	return s.GetSession(ctx, orderID)
}

func (s *checkoutServiceImpl) publish(ctx context.Context, event notify.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish checkout event failed",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}

func customerDetails(user *model.User) client.CustomerDetails {
	return client.CustomerDetails{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}
}
