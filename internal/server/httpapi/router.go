// Package httpapi serves the OAuth profile endpoint over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ProfilePath is the profile endpoint.
const ProfilePath = "/oauth2/profile"

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, rawToken string) (*models.Principal, error)
}

// NewRouter builds the HTTP handler.
func NewRouter(profiles ProfileResolver, logger logging.Logger) http.Handler {
	h := &handler{profiles: profiles, logger: logger.With("module", "http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&requestLogger{logger: h.logger}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get(ProfilePath, h.profile)
	r.Post(ProfilePath, h.profile)
	return r
}

type handler struct {
	profiles ProfileResolver
	logger   logging.Logger
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	token := services.ExtractAccessToken(r.FormValue(common.AccessTokenHeaderName), r.Header.Get(common.AuthorizationHeaderName))

	p, err := h.profiles.ResolveProfile(r.Context(), token)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(r.Context(), "profile resolution failed", "error", err)
			http.Error(w, http.StatusText(status), status)
			return
		}
		http.Error(w, common.MissingAccessTokenCode, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(profilePayload(p)); err != nil {
		h.logger.Error(r.Context(), "error writing profile", "error", err)
	}
}

func profilePayload(p *models.Principal) models.Principal {
	out := models.Principal{ID: p.ID, Attributes: p.Attributes}
	if out.Attributes == nil {
		out.Attributes = map[string]any{}
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingToken):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExpiredToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
