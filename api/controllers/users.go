package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/api/middleware"
	"github.com/wishboardapp/wishboard-backend/api/responses"
	userssvc "github.com/wishboardapp/wishboard-backend/internal/users"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"gorm.io/gorm"
)

// UsersMe returns the authenticated user's own profile.
func UsersMe(repo *userssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorID(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		user, err := repo.FindByID(r.Context(), actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.NotFound("User"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load user"))
			return
		}
		responses.WriteSuccess(w, userssvc.NewProfileDTO(user))
	}
}

// UsersShow returns another user's public profile by handle.
func UsersShow(repo *userssvc.Repository, avatarBaseURL string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		user, err := repo.FindByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.NotFound("User"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load user"))
			return
		}
		responses.WriteSuccess(w, userssvc.NewPublicProfileDTO(user, avatarBaseURL))
	}
}
