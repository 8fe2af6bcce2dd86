package handler

import (
	"net/http"

	"camp_photos/internal/api/middleware"
	"camp_photos/internal/common"

	"github.com/go-chi/chi/v5"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/me", h.me)
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "UP",
		"service": "camp-photos-api",
	})
}

// me echoes the authenticated identity; the policy gates anonymous access.
func (h *HealthHandler) me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident.IsAnonymous() {
		common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"id":       ident.User.ID,
		"username": ident.User.Username,
		"role":     ident.User.Role,
	})
}
