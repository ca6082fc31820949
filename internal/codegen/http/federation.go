package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/federation"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/pkg/cryptox"
	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
)

// stateCookieName carries the CSRF token across the provider round trip.
const stateCookieName = "oauth_state"

// FederationHandler drives the browser through the provider's consent flow
// and logs the returning user in.
type FederationHandler struct {
	AuthService   *service.AuthService
	Provider      *federation.GoogleProvider
	SecureCookies bool
}

func (h *FederationHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Could not start federated login.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusFound)
}

func (h *FederationHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(r.URL.Query().Get("state"))) != 1 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_state", "Login attempt could not be verified. Please retry.")
		return
	}

	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{
		Name: stateCookieName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, Secure: h.SecureCookies, SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Provider did not return an authorization code.")
		return
	}

	profile, err := h.Provider.Exchange(r.Context(), code)
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, "dependency_failure", "Identity provider is unavailable. Please retry.")
		return
	}

	_, sess, err := h.AuthService.LoginFederated(r.Context(), profile.Subject, profile.DisplayName, false)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Federated login failed.")
		return
	}

	setSessionCookie(w, sess, h.SecureCookies)
	http.Redirect(w, r, "/", http.StatusFound)
}
