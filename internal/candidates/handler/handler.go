// Package handler exposes candidate profile endpoints to recruiters.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stafflink/internal/candidates/models"
	"stafflink/internal/candidates/service"
	"stafflink/internal/transport/http/shared"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterEmployee mounts the candidate profile endpoints for employers.
func (h *Handler) RegisterEmployee(r chi.Router) {
	r.Get("/candidates/{candidateID}", h.HandleGet)
	r.Put("/candidates/{candidateID}/status", h.HandleUpdateStatus)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := shared.UUIDParam(w, r, "candidateID")
	if !ok {
		return
	}
	candidate, err := h.service.Get(r.Context(), candidateID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, candidate)
}

type updateStatusRequest struct {
	Status models.CandidateStatus `json:"status"`
	Notes  string                 `json:"notes"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := shared.UUIDParam(w, r, "candidateID")
	if !ok {
		return
	}
	req, ok := shared.Decode[updateStatusRequest](w, r)
	if !ok {
		return
	}
	candidate, err := h.service.UpdateStatus(r.Context(), candidateID, req.Status, req.Notes)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, candidate)
}
