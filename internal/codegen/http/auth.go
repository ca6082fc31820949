package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 64
	passwordMinLen = 8
	passwordMaxLen = 256
)

// AuthHandler serves registration, login, logout and the current-user view.
type AuthHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

type credentialsRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// validateCredentials bounds-checks registration input. Login accepts what
// was stored, so only registration calls this.
func validateCredentials(username, password string) string {
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return fmt.Sprintf("Username must be between %d and %d characters.", usernameMinLen, usernameMaxLen)
	}
	if n := utf8.RuneCountInString(password); n < passwordMinLen || n > passwordMaxLen {
		return fmt.Sprintf("Password must be between %d and %d characters.", passwordMinLen, passwordMaxLen)
	}
	return ""
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if msg := validateCredentials(req.Username, req.Password); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	acc, sess, err := h.AuthService.Register(r.Context(), req.Username, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "username_taken", "That username is already registered.")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Username and password are required.")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Registration failed.")
		}
		return
	}

	setSessionCookie(w, sess, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusCreated, acc.Public())
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acc, sess, err := h.AuthService.Login(r.Context(), req.Username, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One message for unknown users and wrong passwords.
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password.")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Login failed.")
		return
	}

	setSessionCookie(w, sess, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, acc.Public())
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(httpx.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.AuthService.Revoke(r.Context(), cookie.Value); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Logout failed.")
			return
		}
	}

	clearSessionCookie(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out."})
}

func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication_required", "A valid session is required.")
		return
	}

	acc, err := h.AuthService.Account(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication_required", "A valid session is required.")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Lookup failed.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, acc.Public())
}
