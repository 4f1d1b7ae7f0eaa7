package wishlists

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/internal/cache"
	"github.com/wishboardapp/wishboard-backend/internal/ownership"
	"github.com/wishboardapp/wishboard-backend/internal/users"
	"github.com/wishboardapp/wishboard-backend/pkg/db"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
	"gorm.io/gorm"
)

const resourceName = "Wish List"

// Service implements wishlist use cases on top of the repository, the slug
// allocator, the ownership guard and the listing cache.
type Service struct {
	db        *db.Client
	repo      *Repository
	allocator *Allocator
	users     *users.Repository
	cache     *cache.Store
	log       *logger.Logger
}

// NewService wires the wishlist service.
func NewService(client *db.Client, repo *Repository, usersRepo *users.Repository, store *cache.Store, log *logger.Logger) *Service {
	return &Service{
		db:        client,
		repo:      repo,
		allocator: NewAllocator(repo),
		users:     usersRepo,
		cache:     store,
		log:       log,
	}
}

// Create allocates a slug for the actor and inserts the wishlist. The actor's
// cached listing is dropped after the commit.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, input CreateWishlistDTO) (*WishlistDTO, error) {
	desired := ""
	if input.Slug != nil {
		desired = *input.Slug
	}
	slug, err := s.allocator.Allocate(ctx, actorID, desired, input.Name, nil)
	if err != nil {
		return nil, err
	}

	wishlist := &models.Wishlist{
		Name:     input.Name,
		Slug:     slug,
		IsActive: true,
		UserID:   actorID,
	}
	if input.IsActive != nil {
		wishlist.IsActive = *input.IsActive
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, wishlist)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create wish list")
	}

	s.forgetListing(ctx, actorID)
	return NewWishlistDTO(wishlist), nil
}

// Update patches a wishlist the actor owns. A new slug value is reallocated
// through the same path as create, excluding the row being updated.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, patch UpdateWishlistDTO) (*WishlistDTO, error) {
	wishlist, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownership.Authorize(actorID, wishlist); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		wishlist.Name = *patch.Name
	}
	if patch.Slug != nil {
		slug, err := s.allocator.Allocate(ctx, actorID, *patch.Slug, wishlist.Name, &id)
		if err != nil {
			return nil, err
		}
		wishlist.Slug = slug
	}
	if patch.IsActive != nil {
		wishlist.IsActive = *patch.IsActive
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, wishlist)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update wish list")
	}

	s.forgetListing(ctx, actorID)
	return NewWishlistDTO(wishlist), nil
}

// Delete soft-deletes a wishlist the actor owns.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	wishlist, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.Authorize(actorID, wishlist); err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).SoftDelete(ctx, wishlist)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete wish list")
	}

	s.forgetListing(ctx, actorID)
	return nil
}

// GetByID returns a wishlist without an ownership check. Soft-deleted rows
// read as not found; inactive rows stay readable, only listings hide them.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*WishlistDTO, error) {
	wishlist, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewWishlistDTO(wishlist), nil
}

// ListByUsername returns the public page of a user's active wishlists, each
// carrying its product count. Owner views are served from the cache when the
// actor asks for their own listing.
func (s *Service) ListByUsername(ctx context.Context, actorID uuid.UUID, username string, params pagination.Params) (*pagination.Page[*WishlistDTO], error) {
	owner, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("User")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve user")
	}

	params = pagination.Normalize(params, pagination.WishlistsPerPage)

	if actorID != uuid.Nil && actorID == owner.ID && params.Page == 1 {
		var page pagination.Page[*WishlistDTO]
		err := s.cache.Remember(ctx, s.cache.WishlistsKey(owner.ID), &page, func(ctx context.Context) (any, error) {
			return s.fetchPage(ctx, owner.ID, params)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wish lists")
		}
		return &page, nil
	}

	page, err := s.fetchPage(ctx, owner.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wish lists")
	}
	return page, nil
}

func (s *Service) fetchPage(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*pagination.Page[*WishlistDTO], error) {
	rows, total, err := s.repo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}
	dtos := make([]*WishlistDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, newWishlistDTOWithCount(&rows[i]))
	}
	page := pagination.NewPage(dtos, params, total)
	return &page, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	wishlist, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(resourceName)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wish list")
	}
	return wishlist, nil
}

// forgetListing drops the owner's cached listing. The write already committed,
// so a cache failure is logged and swallowed; the entry stays stale until the
// next successful invalidation.
func (s *Service) forgetListing(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cache.Forget(ctx, s.cache.WishlistsKey(ownerID)); err != nil {
		s.log.Error(ctx, "failed to invalidate wish list cache", err)
	}
}
