// Package sessionx issues and validates signed session handles. A session is
// a stateless, tamper-evident reference to an account id with an expiration
// time; the caller carries it on every request (typically in a cookie).
package sessionx

import (
	"strconv"
	"time"

	"github.com/adwaithkm1/web-code-generator/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Session lifetime windows. The default covers a normal browser session,
// the remember window is used when the user opts into "remember me".
const (
	DefaultTTL  = 24 * time.Hour
	RememberTTL = 30 * 24 * time.Hour
)

// Claims are the session-token claims. Kept minimal: the subject is the
// account id and the jti identifies the session for revocation.
type Claims struct {
	jwt.RegisteredClaims

	// Remember records whether the extended lifetime was requested.
	Remember bool `json:"rmb,omitempty"`
}

// TTL returns the lifetime window for the remember flag.
func TTL(remember bool) time.Duration {
	if remember {
		return RememberTTL
	}
	return DefaultTTL
}

// NewClaims builds session claims for an account. The jti is a fresh ULID so
// individual sessions can be revoked without invalidating the signing key.
func NewClaims(accountID int64, remember bool, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL(remember))),
			ID:        idx.New().String(),
		},
		Remember: remember,
	}
}

// AccountID parses the subject claim back into an account id.
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}
