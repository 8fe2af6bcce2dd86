package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"camp_photos/internal/api/middleware"
	"camp_photos/internal/app/service"
	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// RegisterChallengeRoutes mounts the upload endpoints under /api/challenges.
func (h *SubmissionHandler) RegisterChallengeRoutes(r chi.Router) {
	r.Post("/{id}/submit", h.submit)
	r.Put("/{id}/submit", h.replace)
}

// RegisterRoutes mounts the read endpoints under /api/submissions.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/my", h.mine)
	r.Get("/all", h.all)
	r.Get("/public", h.publicByChallenge)
}

// RegisterGalleryRoutes mounts the day gallery under /api/gallery.
func (h *SubmissionHandler) RegisterGalleryRoutes(r chi.Router) {
	r.Get("/", h.galleryByDay)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.submissionService.Create)
}

func (h *SubmissionHandler) replace(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.submissionService.Replace)
}

func (h *SubmissionHandler) upload(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, user *model.User, challengeID, filename string, data []byte) (*model.Submission, error),
) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident.IsAnonymous() {
		common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "form field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	submission, err := op(r.Context(), ident.User, chi.URLParam(r, "id"), header.Filename, data)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) mine(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident.IsAnonymous() {
		common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	submissions, err := h.submissionService.Mine(r.Context(), ident.User)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) all(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.submissionService.All(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) publicByChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := r.URL.Query().Get("challengeId")
	if challengeID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "query parameter 'challengeId' is required")
		return
	}

	submissions, err := h.submissionService.PublicByChallenge(r.Context(), challengeID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) galleryByDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "query parameter 'day' must be an integer")
		return
	}

	submissions, err := h.submissionService.GalleryByDay(r.Context(), day)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}
