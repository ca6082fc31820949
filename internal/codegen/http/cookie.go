package http

import (
	"net/http"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/pkg/httpx"
)

// setSessionCookie installs the session token. HttpOnly keeps it away from
// scripts, SameSite=Lax still allows the federation redirect to carry it.
func setSessionCookie(w http.ResponseWriter, sess domain.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
