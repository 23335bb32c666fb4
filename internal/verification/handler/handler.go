// Package handler exposes the admin KYC review endpoints and the employer
// appeal endpoint.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stafflink/internal/identity/models"
	"stafflink/internal/objectstore"
	"stafflink/internal/transport/http/shared"
	"stafflink/internal/verification/service"
	dErrors "stafflink/pkg/domain-errors"
	"stafflink/pkg/requestcontext"
)

// Handler wires the verification workflow endpoints.
type Handler struct {
	service    *service.Service
	objects    objectstore.Store
	maxDocSize int64
	logger     *slog.Logger
}

func New(service *service.Service, objects objectstore.Store, maxDocSize int64, logger *slog.Logger) *Handler {
	return &Handler{service: service, objects: objects, maxDocSize: maxDocSize, logger: logger}
}

// RegisterAdmin mounts the review endpoints. The router guards these with the
// admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/verification/queue", h.HandleQueue)
	r.Post("/verification/{accountID}/approve", h.HandleApprove)
	r.Post("/verification/{accountID}/reject", h.HandleReject)
	r.Delete("/accounts/{accountID}", h.HandleDelete)
}

// RegisterEmployee mounts the appeal endpoint for the logged-in employer.
func (h *Handler) RegisterEmployee(r chi.Router) {
	r.Post("/verification/appeal", h.HandleAppeal)
}

func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ReviewQueue(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := shared.UUIDParam(w, r, "accountID")
	if !ok {
		return
	}

	account, err := h.service.Approve(ctx, accountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "approval failed",
			"request_id", requestcontext.RequestID(ctx), "account_id", accountID, "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}

type rejectRequest struct {
	Reason   string `json:"reason"`
	Comments string `json:"comments"`
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := shared.UUIDParam(w, r, "accountID")
	if !ok {
		return
	}
	req, ok := shared.Decode[rejectRequest](w, r)
	if !ok {
		return
	}

	account, err := h.service.Reject(ctx, accountID, req.Reason, req.Comments)
	if err != nil {
		h.logger.ErrorContext(ctx, "rejection failed",
			"request_id", requestcontext.RequestID(ctx), "account_id", accountID, "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := shared.UUIDParam(w, r, "accountID")
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, accountID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteMessage(w, http.StatusOK, "account deleted")
}

// HandleAppeal accepts multipart form data: the appeal reason plus an
// optional replacement KYC document.
func (h *Handler) HandleAppeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(h.maxDocSize); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	in := service.AppealInput{Reason: r.FormValue("reason")}
	if file, header, err := r.FormFile("document"); err == nil {
		defer file.Close()
		if header.Size > h.maxDocSize {
			shared.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "document exceeds the %dMB size limit", h.maxDocSize>>20))
			return
		}
		key := fmt.Sprintf("kyc/%s/%s", uuid.NewString(), header.Filename)
		url, err := h.objects.Upload(ctx, key, file, header.Size, header.Header.Get("Content-Type"))
		if err != nil {
			shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document"))
			return
		}
		in.NewDocument = &models.KYCDocument{
			DocumentType: r.FormValue("document_type"),
			Number:       r.FormValue("kyc_number"),
			DocumentURL:  url,
		}
	}

	account, err := h.service.Appeal(ctx, requestcontext.AccountID(ctx), in)
	if err != nil {
		h.logger.ErrorContext(ctx, "appeal failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}
