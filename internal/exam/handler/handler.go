// Package handler exposes the exam pre-check endpoints under the assessment
// namespace.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stafflink/internal/exam/service"
	"stafflink/internal/transport/http/shared"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

// Handler wires the exam pre-check endpoints to the exam service.
type Handler struct {
	service      *service.Service
	maxImageSize int64
	logger       *slog.Logger
}

func New(service *service.Service, maxImageSize int64, logger *slog.Logger) *Handler {
	return &Handler{service: service, maxImageSize: maxImageSize, logger: logger}
}

// Register mounts the candidate-facing pre-check endpoints. The invitation
// token in the URL is the credential; no session is required.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{token}/progress", h.HandleProgress)
	r.Post("/{token}/system-check", h.HandleSystemCheck)
	r.Post("/{token}/focus", h.HandleFocus)
	r.Post("/{token}/id-capture", h.HandleIDCapture)
	r.Post("/{token}/acknowledge-rules", h.HandleAcknowledgeRules)
}

// RegisterAdmin mounts invitation issuance.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/exam/invitations/{candidateID}", h.HandleInvite)
}

func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	candidateID, ok := shared.UUIDParam(w, r, "candidateID")
	if !ok {
		return
	}
	progress, err := h.service.Invite(ctx, candidateID)
	if err != nil {
		h.logger.ErrorContext(ctx, "invitation issuance failed",
			"request_id", requestcontext.RequestID(ctx), "candidate_id", candidateID, "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, progress)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, progress)
}

type systemCheckRequest struct {
	Camera     bool `json:"camera"`
	Fullscreen bool `json:"fullscreen"`
	Features   bool `json:"features"`
}

func (h *Handler) HandleSystemCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Decode[systemCheckRequest](w, r)
	if !ok {
		return
	}
	progress, err := h.service.SystemCheck(r.Context(), chi.URLParam(r, "token"), service.SystemCheckInput{
		Camera:     req.Camera,
		Fullscreen: req.Fullscreen,
		Features:   req.Features,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, progress)
}

type focusRequest struct {
	Focused bool `json:"focused"`
}

func (h *Handler) HandleFocus(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Decode[focusRequest](w, r)
	if !ok {
		return
	}
	if err := h.service.RecordFocus(r.Context(), chi.URLParam(r, "token"), req.Focused); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "focus recorded")
}

// HandleIDCapture accepts multipart form data: the student id number plus the
// id document and live face images.
func (h *Handler) HandleIDCapture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(2 * h.maxImageSize); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	in := service.CaptureIDInput{StudentIDNumber: r.FormValue("student_id_number")}

	idDoc, err := h.formImage(r, "id_document")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	in.IDDocument = idDoc

	face, err := h.formImage(r, "face_image")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	in.FaceImage = face

	progress, err := h.service.CaptureID(ctx, chi.URLParam(r, "token"), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) HandleAcknowledgeRules(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.AcknowledgeRules(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) formImage(r *http.Request, field string) (*service.ImageUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s file", field)
	}
	if header.Size > h.maxImageSize {
		file.Close()
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s exceeds the %dMB size limit", field, h.maxImageSize>>20)
	}
	return &service.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
