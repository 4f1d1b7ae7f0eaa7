package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/api/middleware"
	"github.com/wishboardapp/wishboard-backend/api/responses"
	"github.com/wishboardapp/wishboard-backend/api/validators"
	authsvc "github.com/wishboardapp/wishboard-backend/internal/auth"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
)

// AuthRegister handles account creation.
func AuthRegister(svc *authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.RegisterDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Name = validators.SanitizeString(payload.Name, 100)
		payload.Username = validators.SanitizeString(payload.Username, 30)
		payload.Email = validators.SanitizeString(payload.Email, 254)

		profile, err := svc.Register(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// AuthLogin exchanges credentials for a token pair.
func AuthLogin(svc *authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.LoginDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

// AuthRefresh rotates a refresh token into a fresh pair.
func AuthRefresh(svc *authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.RefreshDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Refresh(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

// AuthLogout revokes the authenticated user's refresh token.
func AuthLogout(svc *authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorID(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		if err := svc.Logout(r.Context(), actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
