package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wishboardapp/wishboard-backend/api/responses"
	"github.com/wishboardapp/wishboard-backend/api/validators"
	productsvc "github.com/wishboardapp/wishboard-backend/internal/products"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/pagination"
)

// ProductCreate adds a product to one of the actor's wishlists.
func ProductCreate(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload productsvc.CreateProductDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Name = validators.SanitizeString(payload.Name, 150)

		dto, err := svc.Create(r.Context(), actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ProductShow is a public read; the payload embeds the owner's public profile.
func ProductShow(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

// ProductUpdate patches a product the actor owns.
func ProductUpdate(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload productsvc.UpdateProductDTO
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

// ProductDelete removes a product the actor owns.
func ProductDelete(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

// ProductsMine lists everything the actor owns, optionally filtered by
// ?is_active=.
func ProductsMine(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		isActive, err := validators.ParseQueryBool(r, "is_active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos, err := svc.ListMine(r.Context(), actorID, productsvc.MineFilter{IsActive: isActive})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

// ProductsByWishlist lists the active products of a user's wishlist addressed
// by username and slug.
func ProductsByWishlist(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		slug := chi.URLParam(r, "slug")

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListPublic(r.Context(), username, slug, pagination.Params{Page: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductReplaceImages swaps a product's image links wholesale.
func ProductReplaceImages(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productsvc.ReplaceImagesDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.ReplaceImages(r.Context(), id, payload.ImageLinks)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductToggleActive flips a product's visibility.
func ProductToggleActive(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload productsvc.ToggleActiveDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := svc.ToggleActive(r.Context(), actorID, id, *payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"is_active": active})
	}
}
