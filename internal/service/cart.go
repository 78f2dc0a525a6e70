package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/piyol1998/stokcer-sub001/internal/cart"
	"github.com/piyol1998/stokcer-sub001/internal/cartstore"
	"github.com/piyol1998/stokcer-sub001/internal/metrics"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"go.uber.org/zap"
)

// CartOpenedFunc is the cart-open UI signal, fired after a successful add.
type CartOpenedFunc func(ctx context.Context, sessionID string)

type CartService interface {
	Get(ctx context.Context, sessionID string) *cart.Cart
	AddItem(ctx context.Context, sessionID, variantID string, quantity int) (*cart.Cart, error)
	// AddItemAsync runs AddItem in the background. The channel yields
	// exactly one value and is then closed.
	AddItemAsync(ctx context.Context, sessionID, variantID string, quantity int) <-chan error
	RemoveItem(ctx context.Context, sessionID, variantID string) *cart.Cart
	UpdateQuantity(ctx context.Context, sessionID, variantID string, quantity int) *cart.Cart
	Clear(ctx context.Context, sessionID string)
}

type cartServiceImpl struct {
	store    cartstore.CartStore
	catalog  repository.CatalogRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	onOpened CartOpenedFunc
}

func NewCartService(
	store cartstore.CartStore,
	catalog repository.CatalogRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	onOpened CartOpenedFunc,
) CartService {
	if onOpened == nil {
		onOpened = func(context.Context, string) {}
	}
	return &cartServiceImpl{
		store:    store,
		catalog:  catalog,
		metrics:  m,
		logger:   logger,
		onOpened: onOpened,
	}
}

func (s *cartServiceImpl) Get(ctx context.Context, sessionID string) *cart.Cart {
	return s.store.Load(ctx, sessionID)
}

func (s *cartServiceImpl) AddItem(ctx context.Context, sessionID, variantID string, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		s.metrics.CartMutation("add", "invalid")
		return nil, cart.ErrInvalidQuantity
	}

	variant, err := s.catalog.FindVariant(ctx, variantID)
	if err != nil {
		s.metrics.CartMutation("add", "not_found")
		return nil, fmt.Errorf("find variant %s: %w", variantID, err)
	}

	product := cart.Product{ID: variant.ProductID}
	if variant.Product != nil {
		product.Name = variant.Product.Name
	}

	c := s.store.Load(ctx, sessionID)
	err = c.Add(product, cart.Variant{
		ID:              variant.ID,
		Title:           variant.Title,
		Price:           variant.Price,
		ManageInventory: variant.ManageInventory,
	}, quantity, variant.Stock)
	if err != nil {
		var stockErr *cart.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.metrics.CartMutation("add", "insufficient_stock")
		} else {
			s.metrics.CartMutation("add", "invalid")
		}
		return nil, err
	}

	s.store.Save(ctx, sessionID, c)
	s.metrics.CartMutation("add", "ok")
	s.onOpened(ctx, sessionID)

	return c, nil
}

func (s *cartServiceImpl) AddItemAsync(ctx context.Context, sessionID, variantID string, quantity int) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := s.AddItem(ctx, sessionID, variantID, quantity)
		done <- err
	}()
	return done
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, sessionID, variantID string) *cart.Cart {
	c := s.store.Load(ctx, sessionID)
	c.Remove(variantID)
	s.store.Save(ctx, sessionID, c)
	s.metrics.CartMutation("remove", "ok")
	return c
}

// UpdateQuantity does not re-check stock.
func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, sessionID, variantID string, quantity int) *cart.Cart {
	c := s.store.Load(ctx, sessionID)
	c.UpdateQuantity(variantID, quantity)
	s.store.Save(ctx, sessionID, c)
	s.metrics.CartMutation("update", "ok")
	return c
}

func (s *cartServiceImpl) Clear(ctx context.Context, sessionID string) {
	s.store.Delete(ctx, sessionID)
	s.metrics.CartMutation("clear", "ok")
	s.logger.Debug("cart cleared", zap.String("session_id", sessionID))
}
