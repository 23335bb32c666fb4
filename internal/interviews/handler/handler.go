// Package handler exposes the interview scheduling endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stafflink/internal/interviews/service"
	"stafflink/internal/transport/http/shared"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

// Handler wires the interview endpoints to the interview service.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterEmployee mounts the scheduling endpoints for employers.
func (h *Handler) RegisterEmployee(r chi.Router) {
	r.Post("/interviews", h.HandleSchedule)
	r.Get("/interviews", h.HandleListOwn)
	r.Get("/interviews/{interviewID}", h.HandleGet)
	r.Post("/interviews/{interviewID}/confirm", h.HandleConfirm)
	r.Post("/interviews/{interviewID}/reschedule", h.HandleReschedule)
	r.Post("/interviews/{interviewID}/complete", h.HandleComplete)
	r.Post("/interviews/{interviewID}/cancel", h.HandleCancel)
	r.Delete("/interviews/{interviewID}", h.HandleDelete)
}

// RegisterStudent mounts the candidate's interview listing.
func (h *Handler) RegisterStudent(r chi.Router) {
	r.Get("/interviews/{candidateID}", h.HandleListByCandidate)
}

type scheduleRequest struct {
	CandidateID     uuid.UUID  `json:"candidate_id"`
	JobID           *uuid.UUID `json:"job_id"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Interviewers    []string   `json:"interviewers"`
	MeetingLink     string     `json:"meeting_link"`
	Notes           string     `json:"notes"`
}

func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := shared.Decode[scheduleRequest](w, r)
	if !ok {
		return
	}
	if req.CandidateID == uuid.Nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "candidate_id is required"))
		return
	}

	interview, err := h.service.Schedule(ctx, service.ScheduleInput{
		EmployerID:   requestcontext.AccountID(ctx),
		CandidateID:  req.CandidateID,
		JobID:        req.JobID,
		ScheduledAt:  req.ScheduledAt,
		Duration:     time.Duration(req.DurationMinutes) * time.Minute,
		Interviewers: req.Interviewers,
		MeetingLink:  req.MeetingLink,
		Notes:        req.Notes,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "interview scheduling failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, interview)
}

func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := shared.UUIDParam(w, r, "interviewID")
	if !ok {
		return
	}
	ctx := r.Context()
	interview, err := h.service.Confirm(ctx, requestcontext.AccountID(ctx), interviewID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interview)
}

type rescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (h *Handler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := shared.UUIDParam(w, r, "interviewID")
	if !ok {
		return
	}
	req, ok := shared.Decode[rescheduleRequest](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	interview, err := h.service.Reschedule(ctx, requestcontext.AccountID(ctx), interviewID,
		req.ScheduledAt, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interview)
}

type completeRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := shared.UUIDParam(w, r, "interviewID")
	if !ok {
		return
	}
	req, ok := shared.Decode[completeRequest](w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	interview, err := h.service.Complete(ctx, requestcontext.AccountID(ctx), interviewID, req.Notes)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interview)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := shared.UUIDParam(w, r, "interviewID")
	if !ok {
		return
	}
	ctx := r.Context()
	interview, err := h.service.Cancel(ctx, requestcontext.AccountID(ctx), interviewID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interview)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := shared.UUIDParam(w, r, "interviewID")
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.service.Delete(ctx, requestcontext.AccountID(ctx), interviewID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "interview deleted")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := shared.UUIDParam(w, r, "interviewID")
	if !ok {
		return
	}
	ctx := r.Context()
	interview, err := h.service.Get(ctx, requestcontext.AccountID(ctx), interviewID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interview)
}

func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	interviews, err := h.service.ListByEmployer(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interviews)
}

func (h *Handler) HandleListByCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := shared.UUIDParam(w, r, "candidateID")
	if !ok {
		return
	}
	ctx := r.Context()
	interviews, err := h.service.ListByCandidate(ctx, requestcontext.AccountID(ctx), candidateID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, interviews)
}
