package wishlists

import (
	"time"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
)

// CreateWishlistDTO carries a wishlist create request.
type CreateWishlistDTO struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	Slug     *string `json:"slug" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`
}

// UpdateWishlistDTO patches a wishlist; nil fields are left untouched.
type UpdateWishlistDTO struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug     *string `json:"slug" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`
}

// WishlistDTO is the API shape of a wishlist.
type WishlistDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	IsActive      bool      `json:"is_active"`
	UserID        uuid.UUID `json:"user_id"`
	ProductsCount *int64    `json:"products_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewWishlistDTO maps a model to its API shape.
func NewWishlistDTO(wishlist *models.Wishlist) *WishlistDTO {
	return &WishlistDTO{
		ID:        wishlist.ID,
		Name:      wishlist.Name,
		Slug:      wishlist.Slug,
		IsActive:  wishlist.IsActive,
		UserID:    wishlist.UserID,
		CreatedAt: wishlist.CreatedAt,
		UpdatedAt: wishlist.UpdatedAt,
	}
}

func newWishlistDTOWithCount(row *wishlistRow) *WishlistDTO {
	dto := NewWishlistDTO(&row.Wishlist)
	count := row.ProductsCount
	dto.ProductsCount = &count
	return dto
}
