package cartstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/piyol1998/stokcer-sub001/internal/cart"
)

// StorageKey addresses the cart record; each session gets its own suffix.
const StorageKey = "stokcer_cart"

type CartStore interface {
	// Load never fails: a missing or unreadable record yields an empty cart.
	Load(ctx context.Context, sessionID string) *cart.Cart
	// Save is best-effort. Failures are logged, not returned.
	Save(ctx context.Context, sessionID string, c *cart.Cart)
	Delete(ctx context.Context, sessionID string)
}

// PersistenceWriteError is what a failed Save or Delete is logged as.
type PersistenceWriteError struct {
	SessionID string
	Err       error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("persist cart for session %s: %v", e.SessionID, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Err
}

type cartStoreImpl struct {
	backend Backend
	logger  *zap.Logger
	sfg     singleflight.Group // collapses concurrent loads of one session
}

func NewCartStore(backend Backend, logger *zap.Logger) CartStore {
	return &cartStoreImpl{
		backend: backend,
		logger:  logger,
	}
}

func Key(sessionID string) string {
	return StorageKey + ":" + sessionID
}

func (s *cartStoreImpl) Load(ctx context.Context, sessionID string) *cart.Cart {
	key := Key(sessionID)
	// shared by every caller in the flight, so detached from their cancellation
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := s.sfg.Do(key, func() (interface{}, error) {
		return s.load(flightCtx, sessionID, key), nil
	})

	// callers sharing a flight must not share the cart
	return v.(*cart.Cart).Clone()
}

func (s *cartStoreImpl) load(ctx context.Context, sessionID, key string) *cart.Cart {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return cart.New()
	}
	if err != nil {
		s.logger.Warn("cart store read failed, using empty cart",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return cart.New()
	}

	c, migrated, err := decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable cart record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return cart.New()
	}

	if migrated {
		s.logger.Info("migrated legacy cart record", zap.String("session_id", sessionID))
		s.Save(ctx, sessionID, c)
	}
	return c
}

func (s *cartStoreImpl) Save(ctx context.Context, sessionID string, c *cart.Cart) {
	data, err := encode(c)
	if err == nil {
		err = s.backend.Set(ctx, Key(sessionID), data)
	}
	if err != nil {
		s.logger.Error("cart save failed",
			zap.Error(&PersistenceWriteError{SessionID: sessionID, Err: err}))
	}
}

func (s *cartStoreImpl) Delete(ctx context.Context, sessionID string) {
	if err := s.backend.Delete(ctx, Key(sessionID)); err != nil {
		s.logger.Error("cart delete failed",
			zap.Error(&PersistenceWriteError{SessionID: sessionID, Err: err}))
	}
}
