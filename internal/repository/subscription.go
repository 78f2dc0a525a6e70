package repository

import (
	"context"

	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository interface {
	Seed(ctx context.Context) error
	GetPlanByCode(ctx context.Context, code string) (*model.Plan, error)
	ListActive(ctx context.Context) ([]*model.Plan, error)
}

type planRepoImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepoImpl{
		db: db,
	}
}

func (r *planRepoImpl) Seed(ctx context.Context) error {
	plans := []model.Plan{
		{Code: "starter", Name: "Stokcer Starter (monthly)", Price: decimal.NewFromInt(99000), Currency: "IDR", Active: true},
		{Code: "pro", Name: "Stokcer Pro (monthly)", Price: decimal.NewFromInt(249000), Currency: "IDR", Active: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}

// GetPlanByCode only returns active plans.
func (r *planRepoImpl) GetPlanByCode(ctx context.Context, code string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&plan).
		Error

	if err != nil {
		return nil, notFound(err)
	}

	return &plan, nil
}

func (r *planRepoImpl) ListActive(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("price").
		Find(&plans).
		Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}
