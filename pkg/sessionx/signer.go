package sessionx

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("sessionx: invalid token")
	ErrExpired      = errors.New("sessionx: token expired")
	ErrIssuer       = errors.New("sessionx: issuer mismatch")
)

// Signer signs and verifies session tokens with a single Ed25519 keypair.
// Tampered, expired, or foreign tokens never resolve to a session.
type Signer struct {
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewSigner wraps an Ed25519 private key. The issuer claim is enforced on
// both signing and verification.
func NewSigner(issuer string, key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("sessionx: invalid Ed25519 private key size")
	}
	if issuer == "" {
		return nil, errors.New("sessionx: issuer must not be empty")
	}

	return &Signer{
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

// Issuer returns the issuer claim this signer stamps and enforces.
func (s *Signer) Issuer() string { return s.issuer }

// Sign turns claims into a compact signed token string.
func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sessionx: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the token's signature, lifetime, and issuer, returning
// the parsed claims. All failures map to the package sentinels so callers
// can treat them uniformly as "unauthenticated" without leaking detail.
func (s *Signer) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Issuer != s.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}
