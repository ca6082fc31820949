package http

import (
	"errors"
	"net/http"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
)

// SharesHandler publishes artifacts and serves them back by share id.
type SharesHandler struct {
	ShareService *service.ShareService
	QuotaService *service.QuotaService
}

type shareRequest struct {
	Language string `json:"language"`
	Prompt   string `json:"prompt"`
	Code     string `json:"code"`
	IsPublic *bool  `json:"isPublic"`
}

func (h *SharesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication_required", "A valid session is required.")
		return
	}

	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Code is required.")
		return
	}
	if !validateGeneration(w, req.Language, req.Prompt) {
		return
	}

	// Sharing spends a quota unit just like generation does.
	if _, err := h.QuotaService.TryConsume(r.Context(), accountID); err != nil {
		writeQuotaError(w, err)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	artifact, err := h.ShareService.Publish(r.Context(), accountID, req.Language, req.Prompt, req.Code, isPublic)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Sharing failed.")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, artifact)
}

func (h *SharesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	shareID := r.PathValue("shareId")

	artifact, err := h.ShareService.Get(r.Context(), shareID)
	if err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			// Never-issued and expired ids are indistinguishable.
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Shared code not found.")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Lookup failed.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, artifact)
}

func (h *SharesHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication_required", "A valid session is required.")
		return
	}

	list, err := h.ShareService.ListByOwner(r.Context(), accountID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Lookup failed.")
		return
	}
	if list == nil {
		list = []domain.SharedArtifact{}
	}

	httpx.WriteJSON(w, http.StatusOK, list)
}
