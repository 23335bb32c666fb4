// Package handler exposes the application intake and pipeline endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stafflink/internal/applications/service"
	candmodels "stafflink/internal/candidates/models"
	"stafflink/internal/objectstore"
	"stafflink/internal/transport/http/shared"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

// Handler wires the application endpoints to the application service.
type Handler struct {
	service      *service.Service
	objects      objectstore.Store
	maxDocSize   int64
	maxMediaSize int64
	logger       *slog.Logger
}

func New(service *service.Service, objects objectstore.Store, maxDocSize, maxMediaSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		objects:      objects,
		maxDocSize:   maxDocSize,
		maxMediaSize: maxMediaSize,
		logger:       logger,
	}
}

// RegisterPublic mounts the anonymous intake endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/{jobID}/apply", h.HandleApply)
}

// RegisterStudent mounts the logged-in candidate endpoints.
func (h *Handler) RegisterStudent(r chi.Router) {
	r.Get("/applications", h.HandleListOwn)
}

// RegisterEmployee mounts the pipeline management endpoints.
func (h *Handler) RegisterEmployee(r chi.Router) {
	r.Get("/jobs/{jobID}/applications", h.HandleListByJob)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Put("/applications/{applicationID}/status", h.HandleSetStatus)
}

// HandleApply accepts multipart form data: the applicant profile plus the
// resume and optional media files. A logged-in session attaches the
// application to the account; anonymous submissions get a pending link.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID, ok := shared.UUIDParam(w, r, "jobID")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(h.maxMediaSize); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	in := service.ApplyInput{
		JobID:             jobID,
		FullName:          r.FormValue("full_name"),
		Email:             r.FormValue("email"),
		Phone:             r.FormValue("phone"),
		Skills:            splitList(r.FormValue("skills")),
		CurrentLocation:   r.FormValue("current_location"),
		PreferredLocation: r.FormValue("preferred_location"),
		CurrentCompany:    r.FormValue("current_company"),
		CurrentRole:       r.FormValue("current_role"),
		ExpectedSalary:    r.FormValue("expected_salary"),
		NoticePeriod:      r.FormValue("notice_period"),
		ResumeURL:         r.FormValue("resume_url"),
	}
	if accountID := requestcontext.AccountID(ctx); accountID != uuid.Nil {
		in.AccountID = &accountID
	}

	for field, dst := range map[string]*candmodels.FlexList{
		"education":      &in.Education,
		"experience":     &in.Experience,
		"certifications": &in.Certifications,
	} {
		if err := parseFlex(r.FormValue(field), dst); err != nil {
			shared.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", field))
			return
		}
	}

	uploads := []struct {
		field   string
		maxSize int64
		dst     *string
	}{
		{"resume", h.maxDocSize, &in.ResumeURL},
		{"photograph", h.maxDocSize, &in.PhotographURL},
		{"video_resume", h.maxMediaSize, &in.VideoResumeURL},
		{"audio_biodata", h.maxMediaSize, &in.AudioBiodataURL},
	}
	for _, u := range uploads {
		url, err := h.uploadFormFile(r, u.field, u.maxSize)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		if url != "" {
			*u.dst = url
		}
	}

	app, err := h.service.Apply(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "application intake failed",
			"request_id", requestcontext.RequestID(ctx), "job_id", jobID, "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, app)
}

type setStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID, ok := shared.UUIDParam(w, r, "applicationID")
	if !ok {
		return
	}
	req, ok := shared.Decode[setStatusRequest](w, r)
	if !ok {
		return
	}

	app, err := h.service.SetStatus(ctx, requestcontext.AccountID(ctx), applicationID, candmodels.CandidateStatus(req.Status), req.Note)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID, ok := shared.UUIDParam(w, r, "applicationID")
	if !ok {
		return
	}
	app, err := h.service.Get(ctx, requestcontext.AccountID(ctx), applicationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) HandleListByJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID, ok := shared.UUIDParam(w, r, "jobID")
	if !ok {
		return
	}
	apps, err := h.service.ListByJob(ctx, requestcontext.AccountID(ctx), jobID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := r.URL.Query().Get("email")
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "email query parameter is required"))
		return
	}
	apps, err := h.service.ListByAccount(ctx, requestcontext.AccountID(ctx), email)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) uploadFormFile(r *http.Request, field string, maxSize int64) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", dErrors.Newf(dErrors.CodeBadRequest, "invalid %s file", field)
	}
	defer file.Close()

	if header.Size > maxSize {
		return "", dErrors.Newf(dErrors.CodeValidation, "%s exceeds the %dMB size limit", field, maxSize>>20)
	}

	key := fmt.Sprintf("applications/%s/%s", uuid.NewString(), header.Filename)
	url, err := h.objects.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store file")
	}
	return url, nil
}

// parseFlex accepts the flexible-shape fields either as JSON or as plain
// text.
func parseFlex(value string, dst *candmodels.FlexList) error {
	if value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), dst); err == nil {
		return nil
	}
	return dst.UnmarshalJSON(mustQuote(value))
}

func mustQuote(value string) []byte {
	quoted, _ := json.Marshal(value)
	return quoted
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
