package repository

import (
	"context"

	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	Seed(ctx context.Context) error
	FindVariant(ctx context.Context, variantID string) (*model.Variant, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "kopi-susu", Name: "Kopi Susu Gula Aren"},
		{ID: "teh-tarik", Name: "Teh Tarik"},
	}
	variants := []model.Variant{
		{ID: "kopi-susu-250", ProductID: "kopi-susu", Title: "250 ml", Price: decimal.NewFromInt(18000), ManageInventory: true, Stock: 40},
		{ID: "kopi-susu-1l", ProductID: "kopi-susu", Title: "1 L", Price: decimal.NewFromInt(65000), ManageInventory: true, Stock: 10},
		{ID: "teh-tarik-250", ProductID: "teh-tarik", Title: "250 ml", Price: decimal.NewFromInt(15000)},
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&variants).Error
	})
}

func (r *catalogRepoImpl) FindVariant(ctx context.Context, variantID string) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", variantID).
		First(&variant).Error

	if err != nil {
		return nil, notFound(err)
	}

	return &variant, nil
}

func (r *catalogRepoImpl) ListProducts(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Order("name").
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}
