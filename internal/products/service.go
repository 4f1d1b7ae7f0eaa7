package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/internal/cache"
	"github.com/wishboardapp/wishboard-backend/internal/ownership"
	"github.com/wishboardapp/wishboard-backend/internal/users"
	"github.com/wishboardapp/wishboard-backend/internal/wishlists"
	"github.com/wishboardapp/wishboard-backend/pkg/db"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	productResource  = "Product"
	wishlistResource = "Wish List"
)

// MineFilter narrows the authenticated listing. It deliberately does not
// participate in the cache key, so the first filter to warm the cache decides
// what every later call sees until the next invalidation.
type MineFilter struct {
	IsActive *bool
}

// Service implements product use cases. Products inherit their owner through
// the parent wishlist, so every mutation authorizes against that chain.
type Service struct {
	db            *db.Client
	repo          *Repository
	wishlistRepo  *wishlists.Repository
	users         *users.Repository
	cache         *cache.Store
	log           *logger.Logger
	avatarBaseURL string
}

// NewService wires the product service.
func NewService(client *db.Client, repo *Repository, wishlistRepo *wishlists.Repository, usersRepo *users.Repository, store *cache.Store, log *logger.Logger, avatarBaseURL string) *Service {
	return &Service{
		db:            client,
		repo:          repo,
		wishlistRepo:  wishlistRepo,
		users:         usersRepo,
		cache:         store,
		log:           log,
		avatarBaseURL: avatarBaseURL,
	}
}

// Create inserts a product into a wishlist the actor owns.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, input CreateProductDTO) (*ProductDTO, error) {
	wishlist, err := s.loadWishlist(ctx, input.WishlistID)
	if err != nil {
		return nil, err
	}
	if err := ownership.Authorize(actorID, wishlist); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          input.Name,
		Description:   input.Description,
		UsePriceRange: true,
		PriceMin:      input.PriceMin,
		PriceMax:      input.PriceMax,
		UseQuantity:   true,
		Quantity:      input.Quantity,
		ImageLinks:    dedupeLinks(input.ImageLinks),
		IsActive:      true,
		WishlistID:    wishlist.ID,
	}
	if input.UsePriceRange != nil {
		product.UsePriceRange = *input.UsePriceRange
	}
	if input.UseQuantity != nil {
		product.UseQuantity = *input.UseQuantity
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, product)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create product")
	}

	s.forgetMine(ctx, actorID)
	return NewProductDTO(product), nil
}

// GetByID is a public read; the response embeds the owner's public profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByIDWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(productResource)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	return NewProductDetailDTO(product, s.avatarBaseURL), nil
}

// Update patches a product the actor owns. Reparenting additionally requires
// owning the destination wishlist.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, patch UpdateProductDTO) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Authorize(actorID, product); err != nil {
		return nil, err
	}

	if patch.WishlistID != nil && *patch.WishlistID != product.WishlistID {
		destination, err := s.loadWishlist(ctx, *patch.WishlistID)
		if err != nil {
			return nil, err
		}
		if err := ownership.Authorize(actorID, destination); err != nil {
			return nil, err
		}
		product.WishlistID = destination.ID
		product.Wishlist = destination
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.UsePriceRange != nil {
		product.UsePriceRange = *patch.UsePriceRange
	}
	if patch.PriceMin != nil {
		product.PriceMin = patch.PriceMin
	}
	if patch.PriceMax != nil {
		product.PriceMax = patch.PriceMax
	}
	if patch.UseQuantity != nil {
		product.UseQuantity = *patch.UseQuantity
	}
	if patch.Quantity != nil {
		product.Quantity = patch.Quantity
	}
	if patch.ImageLinks != nil {
		product.ImageLinks = dedupeLinks(patch.ImageLinks)
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, product)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update product")
	}

	s.forgetMine(ctx, actorID)
	return NewProductDTO(product), nil
}

// Delete removes a product the actor owns. Products hard-delete.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.Authorize(actorID, product); err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, product)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete product")
	}

	s.forgetMine(ctx, actorID)
	return nil
}

// ListMine returns every product the actor owns, cache-first. The filter is
// applied on the way into the cache only; see MineFilter.
func (s *Service) ListMine(ctx context.Context, actorID uuid.UUID, filter MineFilter) ([]*ProductDTO, error) {
	var dtos []*ProductDTO
	err := s.cache.Remember(ctx, s.cache.MyProductsKey(actorID), &dtos, func(ctx context.Context) (any, error) {
		rows, err := s.repo.ListByOwner(ctx, actorID, filter.IsActive)
		if err != nil {
			return nil, err
		}
		out := make([]*ProductDTO, 0, len(rows))
		for i := range rows {
			out = append(out, NewProductDTO(&rows[i]))
		}
		return out, nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list products")
	}
	return dtos, nil
}

// ListPublic pages through the active products of a user's wishlist addressed
// by username and slug.
func (s *Service) ListPublic(ctx context.Context, username, slug string, params pagination.Params) (*pagination.Page[*ProductDTO], error) {
	owner, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("User")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve user")
	}

	wishlist, err := s.wishlistRepo.FindByOwnerAndSlug(ctx, owner.ID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(wishlistResource)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve wish list")
	}

	params = pagination.Normalize(params, pagination.ProductsPerPage)
	rows, total, err := s.repo.ListByWishlist(ctx, wishlist.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list products")
	}

	dtos := make([]*ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewProductDTO(&rows[i]))
	}
	page := pagination.NewPage(dtos, params, total)
	return &page, nil
}

// ReplaceImages swaps the product's image links for the deduplicated input.
// There is no ownership check and no cache invalidation on this path.
func (s *Service) ReplaceImages(ctx context.Context, id uuid.UUID, links []string) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	product.ImageLinks = dedupeLinks(links)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, product)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to replace product images")
	}
	return NewProductDTO(product), nil
}

// ToggleActive flips product visibility for an owner and returns the new
// value. The cached listing is not invalidated on this path.
func (s *Service) ToggleActive(ctx context.Context, actorID, id uuid.UUID, isActive bool) (bool, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if err := ownership.Authorize(actorID, product); err != nil {
		return false, err
	}

	product.IsActive = isActive

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, product)
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to toggle product")
	}
	return product.IsActive, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(productResource)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	return product, nil
}

func (s *Service) loadWishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(wishlistResource)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wish list")
	}
	return wishlist, nil
}

func (s *Service) forgetMine(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cache.Forget(ctx, s.cache.MyProductsKey(ownerID)); err != nil {
		s.log.Error(ctx, "failed to invalidate product cache", err)
	}
}
