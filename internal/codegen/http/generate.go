package http

import (
	"errors"
	"net/http"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/generator"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
)

// maxPromptLength bounds the user prompt forwarded upstream.
const maxPromptLength = 1000

// GenerateHandler turns a prompt into code via the upstream model, spending
// one unit of the caller's quota per attempt.
type GenerateHandler struct {
	QuotaService *service.QuotaService
	Generator    *generator.Client
}

type generateRequest struct {
	Language string `json:"language"`
	Prompt   string `json:"prompt"`
}

type generateResponse struct {
	Code string `json:"code"`
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication_required", "A valid session is required.")
		return
	}

	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateGeneration(w, req.Language, req.Prompt) {
		return
	}

	// The quota is spent before the upstream call; a failed generation
	// still counts, matching the recoverable 429 contract.
	if _, err := h.QuotaService.TryConsume(r.Context(), accountID); err != nil {
		writeQuotaError(w, err)
		return
	}

	code, err := h.Generator.GenerateCode(r.Context(), req.Language, req.Prompt)
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, "dependency_failure", "Code generation is temporarily unavailable. Please retry.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, generateResponse{Code: code})
}

func validateGeneration(w http.ResponseWriter, language, prompt string) bool {
	if prompt == "" || len(prompt) > maxPromptLength {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Prompt must be between 1 and 1000 characters.")
		return false
	}
	if !domain.IsSupportedLanguage(language) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Unsupported language.")
		return false
	}
	return true
}

func writeQuotaError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrQuotaExhausted) {
		httpx.WriteError(w, http.StatusTooManyRequests, "quota_exhausted", "Generation quota exhausted. It resets automatically; try again shortly.")
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Quota check failed.")
}
