package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/api/middleware"
	"github.com/wishboardapp/wishboard-backend/api/responses"
	"github.com/wishboardapp/wishboard-backend/api/validators"
	wishlistsvc "github.com/wishboardapp/wishboard-backend/internal/wishlists"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
)

// WishlistCreate handles wishlist creation for the authenticated user.
func WishlistCreate(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload wishlistsvc.CreateWishlistDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Name = validators.SanitizeString(payload.Name, 100)

		dto, err := svc.Create(r.Context(), actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// WishlistShow is a public read by id.
func WishlistShow(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// WishlistUpdate patches a wishlist the actor owns.
func WishlistUpdate(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload wishlistsvc.UpdateWishlistDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), actorID, id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// WishlistDelete soft-deletes a wishlist the actor owns.
func WishlistDelete(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// WishlistsByUsername lists a user's active wishlists.
func WishlistsByUsername(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByUsername(r.Context(), middleware.ActorID(r.Context()), username, pagination.Params{Page: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	actorID := middleware.ActorID(r.Context())
	if actorID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}
	return actorID, true
}

func parseIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
