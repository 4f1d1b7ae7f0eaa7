package models

import (
	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/internal/ownership"
)

// Ownership chain: Product -> Wishlist -> User. Wishlists carry their owner
// directly; products delegate to their (preloaded) wishlist.

func (w *Wishlist) ResourceName() string { return "Wish List" }
func (w *Wishlist) OwnerID() uuid.UUID   { return w.UserID }

func (w *Wishlist) Parent() ownership.Resource { return nil }

func (p *Product) ResourceName() string { return "Product" }
func (p *Product) OwnerID() uuid.UUID   { return uuid.Nil }

func (p *Product) Parent() ownership.Resource {
	if p.Wishlist == nil {
		return nil
	}
	return p.Wishlist
}
