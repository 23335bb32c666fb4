package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stafflink/internal/transport/http/shared"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler streams candidate exports as xlsx attachments.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterEmployee mounts the export endpoints.
func (h *Handler) RegisterEmployee(r chi.Router) {
	r.Get("/export/candidates/{candidateID}", h.HandleExportCandidate)
	r.Get("/export/candidates", h.HandleExportCandidates)
}

func (h *Handler) HandleExportCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	candidateID, ok := shared.UUIDParam(w, r, "candidateID")
	if !ok {
		return
	}

	data, err := h.service.Candidate(ctx, candidateID)
	if err != nil {
		h.logger.ErrorContext(ctx, "candidate export failed",
			"request_id", requestcontext.RequestID(ctx), "candidate_id", candidateID, "error", err)
		shared.WriteError(w, err)
		return
	}
	writeAttachment(w, fmt.Sprintf("candidate-%s.xlsx", candidateID), data)
}

// HandleExportCandidates exports the candidates named by the comma-separated
// ids query parameter.
func (h *Handler) HandleExportCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	data, err := h.service.Candidates(ctx, ids)
	if err != nil {
		h.logger.ErrorContext(ctx, "bulk export failed",
			"request_id", requestcontext.RequestID(ctx), "requested", len(ids), "error", err)
		shared.WriteError(w, err)
		return
	}
	name := fmt.Sprintf("candidates-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	writeAttachment(w, name, data)
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "ids query parameter is required")
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			// Unknown and malformed ids alike are skipped, not fatal.
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no valid candidates selected")
	}
	return ids, nil
}

func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
