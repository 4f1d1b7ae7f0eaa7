package ownership

import (
	"github.com/google/uuid"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
)

// Resource is anything whose ownership can be checked. A resource either
// carries its owning user id directly (OwnerID != uuid.Nil) or delegates to a
// parent resource, so the guard works for any ownership depth.
type Resource interface {
	ResourceName() string
	OwnerID() uuid.UUID
	Parent() Resource
}

// Authorize walks the resource's ownership chain until it reaches a user id
// and compares it against the actor. The forbidden error always names the
// resource the actor asked about, not the parent that failed the check.
func Authorize(actorID uuid.UUID, res Resource) error {
	if res == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ownership: nil resource")
	}
	if actorID == uuid.Nil {
		return pkgerrors.NotAuthorized(res.ResourceName())
	}

	for node := res; node != nil; node = node.Parent() {
		owner := node.OwnerID()
		if owner == uuid.Nil {
			continue
		}
		if owner == actorID {
			return nil
		}
		return pkgerrors.NotAuthorized(res.ResourceName())
	}

	// Chain ended without an owner: the parent was not loaded or the data is
	// inconsistent. Deny rather than guess.
	return pkgerrors.NotAuthorized(res.ResourceName())
}
