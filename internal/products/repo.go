package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles product persistence. Products hard-delete; only their
// parent wishlists soft-delete.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a product with its wishlist so the ownership chain resolves.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Wishlist").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDWithOwner loads a product with its wishlist, the owning user and
// their avatar, for public detail views.
func (r *Repository) FindByIDWithOwner(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Wishlist.User.Image").
		Preload("Wishlist").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Save persists every field of an already-loaded product. Associations are
// omitted so a preloaded wishlist is never written back as a side effect.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// Delete removes the product row permanently.
func (r *Repository) Delete(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Delete(product).Error
}

// ListByOwner returns every product whose wishlist belongs to ownerID, newest
// first, optionally filtered by is_active. Soft-deleted wishlists drop their
// products from the listing.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, isActive *bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*").
		Joins("JOIN wish_lists ON wish_lists.id = products.wish_list_id").
		Where("wish_lists.user_id = ? AND wish_lists.deleted_at IS NULL", ownerID)
	if isActive != nil {
		query = query.Where("products.is_active = ?", *isActive)
	}

	var rows []models.Product
	if err := query.Order("products.created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByWishlist returns a page of active products in the given wishlist,
// newest first.
func (r *Repository) ListByWishlist(ctx context.Context, wishlistID uuid.UUID, params pagination.Params) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("wish_list_id = ? AND is_active = ?", wishlistID, true).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := base.
		Order("created_at DESC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
