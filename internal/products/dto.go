package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wishboardapp/wishboard-backend/internal/users"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
)

// CreateProductDTO carries a product create request.
type CreateProductDTO struct {
	Name          string           `json:"name" validate:"required,min=1,max=150"`
	Description   string           `json:"description" validate:"max=2000"`
	WishlistID    uuid.UUID        `json:"wish_list_id" validate:"required"`
	UsePriceRange *bool            `json:"use_price_range"`
	PriceMin      *decimal.Decimal `json:"price_min"`
	PriceMax      *decimal.Decimal `json:"price_max"`
	UseQuantity   *bool            `json:"use_quantity"`
	Quantity      *int             `json:"quantity" validate:"omitempty,min=0"`
	ImageLinks    []string         `json:"image_links" validate:"omitempty,max=20,dive,url"`
	IsActive      *bool            `json:"is_active"`
}

// UpdateProductDTO patches a product; nil fields are left untouched. Setting
// WishlistID reparents the product, which requires owning the destination too.
type UpdateProductDTO struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=150"`
	Description   *string          `json:"description" validate:"omitempty,max=2000"`
	WishlistID    *uuid.UUID       `json:"wish_list_id"`
	UsePriceRange *bool            `json:"use_price_range"`
	PriceMin      *decimal.Decimal `json:"price_min"`
	PriceMax      *decimal.Decimal `json:"price_max"`
	UseQuantity   *bool            `json:"use_quantity"`
	Quantity      *int             `json:"quantity" validate:"omitempty,min=0"`
	ImageLinks    []string         `json:"image_links" validate:"omitempty,max=20,dive,url"`
	IsActive      *bool            `json:"is_active"`
}

// ReplaceImagesDTO carries the full replacement set of image links.
type ReplaceImagesDTO struct {
	ImageLinks []string `json:"image_links" validate:"required,max=20,dive,url"`
}

// ToggleActiveDTO flips product visibility.
type ToggleActiveDTO struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ProductDTO is the API shape of a product.
type ProductDTO struct {
	ID            uuid.UUID               `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	UsePriceRange bool                    `json:"use_price_range"`
	PriceMin      *decimal.Decimal        `json:"price_min"`
	PriceMax      *decimal.Decimal        `json:"price_max"`
	UseQuantity   bool                    `json:"use_quantity"`
	Quantity      *int                    `json:"quantity"`
	ImageLinks    []string                `json:"image_links"`
	IsActive      bool                    `json:"is_active"`
	WishlistID    uuid.UUID               `json:"wish_list_id"`
	Owner         *users.PublicProfileDTO `json:"owner,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewProductDTO maps a model to its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	links := []string(product.ImageLinks)
	if links == nil {
		links = []string{}
	}
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		UsePriceRange: product.UsePriceRange,
		PriceMin:      product.PriceMin,
		PriceMax:      product.PriceMax,
		UseQuantity:   product.UseQuantity,
		Quantity:      product.Quantity,
		ImageLinks:    links,
		IsActive:      product.IsActive,
		WishlistID:    product.WishlistID,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// NewProductDetailDTO maps a model whose owner relations are preloaded,
// flattening the owning user into a public profile.
func NewProductDetailDTO(product *models.Product, avatarBaseURL string) *ProductDTO {
	dto := NewProductDTO(product)
	if product.Wishlist != nil && product.Wishlist.User != nil {
		dto.Owner = users.NewPublicProfileDTO(product.Wishlist.User, avatarBaseURL)
	}
	return dto
}
