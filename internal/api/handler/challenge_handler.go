package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"camp_photos/internal/api/middleware"
	"camp_photos/internal/app/service"
	"camp_photos/internal/common"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(cs *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.getByDay)
	r.Get("/days", h.availableDays)
	r.Get("/{id}", h.getByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *ChallengeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	view, err := h.challengeService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, view)
}

func (h *ChallengeHandler) getByDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "query parameter 'day' must be an integer")
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	views, err := h.challengeService.GetByDay(r.Context(), day, ident)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, views)
}

func (h *ChallengeHandler) availableDays(w http.ResponseWriter, r *http.Request) {
	views, err := h.challengeService.AvailableDays(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, views)
}

func (h *ChallengeHandler) getByID(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	view, err := h.challengeService.GetByID(r.Context(), chi.URLParam(r, "id"), ident)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ChallengeHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	view, err := h.challengeService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ChallengeHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.challengeService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
