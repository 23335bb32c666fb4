// Package handler exposes the job posting endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stafflink/internal/jobs/models"
	"stafflink/internal/jobs/service"
	"stafflink/internal/transport/http/shared"
	"stafflink/pkg/requestcontext"
)

// Handler wires the job endpoints to the job service.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the open job board endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/", h.HandleListOpen)
	r.Get("/{jobID}", h.HandleGet)
}

// RegisterEmployee mounts the posting management endpoints. The router guards
// these with the employee session.
func (h *Handler) RegisterEmployee(r chi.Router) {
	r.Post("/jobs", h.HandleCreate)
	r.Get("/jobs", h.HandleListOwn)
	r.Put("/jobs/{jobID}", h.HandleUpdate)
	r.Delete("/jobs/{jobID}", h.HandleDelete)
}

type jobRequest struct {
	Title         string                     `json:"title"`
	Location      string                     `json:"location"`
	ExperienceMin int                        `json:"experience_min"`
	ExperienceMax int                        `json:"experience_max"`
	SalaryMin     int                        `json:"salary_min"`
	SalaryMax     int                        `json:"salary_max"`
	Skills        []string                   `json:"skills"`
	Description   string                     `json:"description"`
	Screening     []models.ScreeningQuestion `json:"screening"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := shared.Decode[jobRequest](w, r)
	if !ok {
		return
	}

	job, err := h.service.Create(ctx, requestcontext.AccountID(ctx), service.CreateInput{
		Title:         req.Title,
		Location:      req.Location,
		ExperienceMin: req.ExperienceMin,
		ExperienceMax: req.ExperienceMax,
		SalaryMin:     req.SalaryMin,
		SalaryMax:     req.SalaryMax,
		Skills:        req.Skills,
		Description:   req.Description,
		Screening:     req.Screening,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "job creation failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, job)
}

type jobUpdateRequest struct {
	Title         *string                    `json:"title"`
	Location      *string                    `json:"location"`
	ExperienceMin *int                       `json:"experience_min"`
	ExperienceMax *int                       `json:"experience_max"`
	SalaryMin     *int                       `json:"salary_min"`
	SalaryMax     *int                       `json:"salary_max"`
	Skills        []string                   `json:"skills"`
	Description   *string                    `json:"description"`
	Screening     []models.ScreeningQuestion `json:"screening"`
	Status        *models.JobStatus          `json:"status"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID, ok := shared.UUIDParam(w, r, "jobID")
	if !ok {
		return
	}
	req, ok := shared.Decode[jobUpdateRequest](w, r)
	if !ok {
		return
	}

	job, err := h.service.Update(ctx, requestcontext.AccountID(ctx), jobID, service.UpdateInput{
		Title:         req.Title,
		Location:      req.Location,
		ExperienceMin: req.ExperienceMin,
		ExperienceMax: req.ExperienceMax,
		SalaryMin:     req.SalaryMin,
		SalaryMax:     req.SalaryMax,
		Skills:        req.Skills,
		Description:   req.Description,
		Screening:     req.Screening,
		Status:        req.Status,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID, ok := shared.UUIDParam(w, r, "jobID")
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, requestcontext.AccountID(ctx), jobID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "job deleted")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	jobID, ok := shared.UUIDParam(w, r, "jobID")
	if !ok {
		return
	}
	job, err := h.service.Get(r.Context(), jobID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) HandleListOpen(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListOpen(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, jobs)
}

func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobs, err := h.service.ListByEmployer(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, jobs)
}
