package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product belongs to a wishlist; its effective owner is the wishlist's user.
// Pricing is either a min/max range (UsePriceRange) or a fixed price stored in
// PriceMin. ImageLinks never holds duplicates.
type Product struct {
	ID            uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	Name          string                      `gorm:"column:name;not null"`
	Description   string                      `gorm:"column:description;not null"`
	UsePriceRange bool                        `gorm:"column:use_price_range;not null;default:true"`
	PriceMin      *decimal.Decimal            `gorm:"column:price_min;type:numeric(12,2)"`
	PriceMax      *decimal.Decimal            `gorm:"column:price_max;type:numeric(12,2)"`
	UseQuantity   bool                        `gorm:"column:use_quantity;not null;default:true"`
	Quantity      *int                        `gorm:"column:quantity"`
	ImageLinks    datatypes.JSONSlice[string] `gorm:"column:image_links"`
	IsActive      bool                        `gorm:"column:is_active;not null"`
	WishlistID    uuid.UUID                   `gorm:"column:wish_list_id;type:uuid;not null;index"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;autoUpdateTime"`

	Wishlist *Wishlist `gorm:"foreignKey:WishlistID"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
