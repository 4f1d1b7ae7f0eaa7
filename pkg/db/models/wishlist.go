package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wishlist groups products under an owning user. Rows are soft-deleted; the
// (user_id, slug) pair must be unique among live rows, which is enforced by
// the slug allocator rather than a database constraint.
type Wishlist struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Slug      string         `gorm:"column:slug;not null;index:wish_lists_user_slug_idx"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index:wish_lists_user_slug_idx"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`

	User *User `gorm:"foreignKey:UserID"`
}

// TableName keeps the historical table name.
func (Wishlist) TableName() string {
	return "wish_lists"
}

func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
