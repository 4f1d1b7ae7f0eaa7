package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	Username        string     `gorm:"column:username;not null;uniqueIndex"`
	Email           string     `gorm:"column:email;not null;uniqueIndex"`
	Tel             *string    `gorm:"column:tel"`
	PasswordHash    string     `gorm:"column:password_hash;not null"`
	EmailVerifiedAt *time.Time `gorm:"column:email_verified_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Image *Image `gorm:"foreignKey:UserID"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
