package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/adwaithkm1/web-code-generator/pkg/slogx"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "session"

// ErrUnauthenticated marks resolver failures caused by the token itself.
// Any other resolver error is an internal failure and must not be reported
// to the client as a missing session.
var ErrUnauthenticated = errors.New("httpx: unauthenticated")

// SessionResolver validates an opaque session token and returns the account
// id and session id it is bound to. Expired, tampered, or revoked tokens
// must return ErrUnauthenticated (or wrap it); the middleware never
// distinguishes those causes to the client.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (accountID int64, sessionID string, err error)
}

// SessionMiddleware resolves the session cookie to an identity and injects
// it into the request context. Requests without a valid session get a 401
// and never reach the handler.
func SessionMiddleware(resolver SessionResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthenticated(w)
				return
			}

			accountID, sessionID, err := resolver.Resolve(ctx, cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					slogx.FromContext(ctx).Error("session resolution failed", "err", err)
					WriteError(w, http.StatusInternalServerError, "internal_error", "Session lookup failed.")
					return
				}
				slogx.FromContext(ctx).Debug("session rejected", "err", err)
				writeUnauthenticated(w)
				return
			}

			ctx = context.WithValue(ctx, CtxKeyAccountID, accountID)
			ctx = context.WithValue(ctx, CtxKeySessionID, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "authentication_required", "A valid session is required.")
}
