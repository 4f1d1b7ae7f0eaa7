package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image stores avatar metadata for a user. The file itself lives on disk
// under Folder/Name; Name is a content hash plus extension.
type Image struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;not null"`
	OriginalName string    `gorm:"column:original_name;not null"`
	Format       string    `gorm:"column:format;not null"`
	Folder       string    `gorm:"column:folder;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
