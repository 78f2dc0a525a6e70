package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string    `gorm:"primaryKey;size:64;not null"`
	Name      string    `gorm:"size:255;not null"`
	Variants  []Variant `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Variant struct {
	ID              string          `gorm:"primaryKey;size:64;not null"`
	ProductID       string          `gorm:"size:64;index;not null"`
	Product         *Product        `gorm:"foreignKey:ProductID"`
	Title           string          `gorm:"size:255"`
	Price           decimal.Decimal `gorm:"type:decimal(20,2);not null"` // store currency, major units
	ManageInventory bool            `gorm:"not null;default:false"`
	Stock           int             `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Plan struct {
	Code      string          `gorm:"primaryKey;size:64;not null"`
	Name      string          `gorm:"size:255;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency  string          `gorm:"size:8;not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckoutSession mirrors what the payment provider reported for an order.
// It is a cache for display and audit only.
type CheckoutSession struct {
	OrderID       string          `gorm:"primaryKey;size:64;not null"`
	UserID        string          `gorm:"size:64;index;not null"`
	Reference     string          `gorm:"size:64;not null"` // plan code, or "cart"
	Provider      string          `gorm:"size:32;index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency      string          `gorm:"size:8;not null"`
	Status        Status          `gorm:"size:16;index;not null"` // pending, paid, failed, expired
	ProviderToken string          `gorm:"size:255"`
	RedirectURL   string          `gorm:"size:1024"`
	Metadata      Metadata        `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	Provider    string `gorm:"primaryKey;size:32;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
