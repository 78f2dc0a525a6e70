package repository

import (
	"context"
	"errors"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/model"
	"gorm.io/gorm"
)

type CheckoutSessionRepository interface {
	Create(ctx context.Context, session *model.CheckoutSession) error
	FindByOrderID(ctx context.Context, orderID string) (*model.CheckoutSession, error)
	// UpdateStatus overwrites status and metadata. It reports whether a write
	// happened: identical values and a pending report for an already
	// resolved session are skipped.
	UpdateStatus(ctx context.Context, orderID string, status model.Status, metadata model.Metadata) (bool, error)
	ListPending(ctx context.Context, provider string, createdBefore time.Time, limit int) ([]*model.CheckoutSession, error)
}

var ErrDuplicateOrder = errors.New("checkout session already exists")

type checkoutSessionRepoImpl struct {
	db *gorm.DB
}

func NewCheckoutSessionRepository(db *gorm.DB) CheckoutSessionRepository {
	return &checkoutSessionRepoImpl{
		db: db,
	}
}

func (r *checkoutSessionRepoImpl) Create(ctx context.Context, session *model.CheckoutSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.CheckoutSession{}).
			Where("order_id = ?", session.OrderID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateOrder
		}
		return tx.Create(session).Error
	})
}

func (r *checkoutSessionRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.CheckoutSession, error) {
	var session model.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&session).Error

	if err != nil {
		return nil, notFound(err)
	}

	return &session, nil
}

func (r *checkoutSessionRepoImpl) UpdateStatus(ctx context.Context, orderID string, status model.Status, metadata model.Metadata) (bool, error) {
	written := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.CheckoutSession
		if err := tx.Where("order_id = ?", orderID).First(&current).Error; err != nil {
			return notFound(err)
		}

		if current.Status.IsTerminal() && status == model.StatusPending {
			return nil
		}
		if current.Status == status && current.Metadata.Equal(metadata) {
			return nil
		}

		if metadata == nil {
			metadata = model.Metadata{}
		}
		result := tx.Model(&model.CheckoutSession{}).
			Where("order_id = ?", orderID).
			Updates(map[string]interface{}{
				"status":     status,
				"metadata":   metadata,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		written = true
		return nil
	})

	return written, err
}

func (r *checkoutSessionRepoImpl) ListPending(ctx context.Context, provider string, createdBefore time.Time, limit int) ([]*model.CheckoutSession, error) {
	var sessions []*model.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("status = ? AND provider = ? AND created_at < ?", model.StatusPending, provider, createdBefore).
		Order("created_at").
		Limit(limit).
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	return sessions, nil
}
