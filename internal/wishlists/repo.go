package wishlists

import (
	"context"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles wishlist persistence. Soft-deleted rows are invisible to
// every query here; GORM's DeletedAt scoping does the filtering.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a wishlist row.
func (r *Repository) Create(ctx context.Context, wishlist *models.Wishlist) error {
	return r.db.WithContext(ctx).Create(wishlist).Error
}

// FindByID loads a live wishlist by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := r.db.WithContext(ctx).First(&wishlist, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// FindByOwnerAndSlug loads a live wishlist by its owner and slug.
func (r *Repository) FindByOwnerAndSlug(ctx context.Context, ownerID uuid.UUID, slug string) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND slug = ?", ownerID, slug).
		First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// SlugAvailable reports whether no live wishlist of the owner uses slug,
// ignoring the row identified by excludeID so updates can keep their slug.
func (r *Repository) SlugAvailable(ctx context.Context, ownerID uuid.UUID, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Wishlist{}).
		Where("user_id = ? AND slug = ?", ownerID, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// Save persists every field of an already-loaded wishlist. Associations are
// omitted so a preloaded owner is never written back as a side effect.
func (r *Repository) Save(ctx context.Context, wishlist *models.Wishlist) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(wishlist).Error
}

// SoftDelete marks the wishlist deleted; the row stays behind with deleted_at set.
func (r *Repository) SoftDelete(ctx context.Context, wishlist *models.Wishlist) error {
	return r.db.WithContext(ctx).Delete(wishlist).Error
}

// wishlistRow carries a wishlist plus its denormalized product count.
type wishlistRow struct {
	models.Wishlist
	ProductsCount int64 `gorm:"column:products_count"`
}

// ListByOwner returns the owner's active wishlists newest-updated first, each
// with a product count computed by subquery.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) ([]wishlistRow, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Wishlist{}).
		Where("user_id = ? AND is_active = ?", ownerID, true).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []wishlistRow
	err := base.
		Select("wish_lists.*, (SELECT COUNT(*) FROM products WHERE products.wish_list_id = wish_lists.id) AS products_count").
		Order("updated_at DESC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
