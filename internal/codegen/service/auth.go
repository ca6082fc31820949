package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/pkg/cryptox"
	"github.com/adwaithkm1/web-code-generator/pkg/sessionx"
	"github.com/adwaithkm1/web-code-generator/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// decoyHash is verified against when a login names an unknown username, so
// the request costs the same as a real mismatch and response timing does not
// reveal which usernames exist.
var decoyHash = cryptox.MustHashPassword("decoy-password-never-matches")

// AuthService owns registration, login and the session lifecycle.
type AuthService struct {
	Store        store.Store
	Signer       *sessionx.Signer
	QuotaCeiling int

	// Now is the clock; nil means time.Now. Tests override it.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates a local account and returns a fresh session for it.
func (s *AuthService) Register(ctx context.Context, username, password string, remember bool) (domain.Account, domain.Session, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, domain.Session{}, ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, domain.Session{}, err
	}

	acc, err := s.Store.Accounts().CreateAccount(ctx, username, hash, nil, s.QuotaCeiling)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, domain.Session{}, ErrUsernameTaken
		}
		return domain.Account{}, domain.Session{}, err
	}

	l.Info("account registered", slog.Int64("account_id", acc.ID))

	sess, err := s.Issue(acc.ID, remember)
	if err != nil {
		return domain.Account{}, domain.Session{}, err
	}
	return acc, sess, nil
}

// Login verifies local credentials and returns a fresh session. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string, remember bool) (domain.Account, domain.Session, error) {
	l := slogx.FromContext(ctx)

	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same hashing work as a real verification.
			_ = cryptox.VerifyPassword(password, decoyHash)
			return domain.Account{}, domain.Session{}, ErrInvalidCredentials
		}
		return domain.Account{}, domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, acc.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) || errors.Is(err, cryptox.ErrMalformedHash) {
			l.Info("login rejected", slog.Int64("account_id", acc.ID))
			return domain.Account{}, domain.Session{}, ErrInvalidCredentials
		}
		return domain.Account{}, domain.Session{}, err
	}

	sess, err := s.Issue(acc.ID, remember)
	if err != nil {
		return domain.Account{}, domain.Session{}, err
	}
	return acc, sess, nil
}

// LoginFederated resolves an identity-provider subject to an account,
// creating one on first contact, and returns a fresh session. Federated
// accounts carry an unguessable placeholder password so the local login
// path can never match them.
func (s *AuthService) LoginFederated(ctx context.Context, federatedID, displayName string, remember bool) (domain.Account, domain.Session, error) {
	l := slogx.FromContext(ctx)

	acc, err := s.Store.Accounts().GetAccountByFederatedID(ctx, federatedID)
	if errors.Is(err, store.ErrNotFound) {
		acc, err = s.createFederated(ctx, federatedID, displayName)
		if err == nil {
			l.Info("federated account registered", slog.Int64("account_id", acc.ID))
		}
	}
	if err != nil {
		return domain.Account{}, domain.Session{}, err
	}

	sess, err := s.Issue(acc.ID, remember)
	if err != nil {
		return domain.Account{}, domain.Session{}, err
	}
	return acc, sess, nil
}

func (s *AuthService) createFederated(ctx context.Context, federatedID, displayName string) (domain.Account, error) {
	placeholder, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Account{}, err
	}
	hash, err := cryptox.HashPassword(placeholder)
	if err != nil {
		return domain.Account{}, err
	}

	username := strings.TrimSpace(displayName)
	if username == "" {
		username = federatedID
	}

	// The provider's display name may collide with an existing username;
	// fall back to the provider subject which is unique by construction.
	acc, err := s.Store.Accounts().CreateAccount(ctx, username, hash, &federatedID, s.QuotaCeiling)
	if errors.Is(err, store.ErrAlreadyExists) {
		acc, err = s.Store.Accounts().CreateAccount(ctx, federatedID, hash, &federatedID, s.QuotaCeiling)
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race against another callback for the same subject.
			return s.Store.Accounts().GetAccountByFederatedID(ctx, federatedID)
		}
	}
	return acc, err
}

// Issue signs a new session token for the account.
func (s *AuthService) Issue(accountID int64, remember bool) (domain.Session, error) {
	claims := sessionx.NewClaims(accountID, remember, s.Signer.Issuer(), s.now())

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Remember:  remember,
	}, nil
}

// Resolve validates a session token and returns the account it belongs to
// along with the session id. Expired, tampered and revoked tokens all come
// back as ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Account, string, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return domain.Account{}, "", ErrUnauthenticated
	}

	revoked, err := s.Store.Sessions().IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Account{}, "", err
	}
	if revoked {
		return domain.Account{}, "", ErrUnauthenticated
	}

	accountID, err := claims.AccountID()
	if err != nil {
		return domain.Account{}, "", ErrUnauthenticated
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, "", ErrUnauthenticated
		}
		return domain.Account{}, "", err
	}
	return acc, claims.ID, nil
}

// Account returns the account for an id, typically one already resolved by
// the session guard.
func (s *AuthService) Account(ctx context.Context, id int64) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrUnauthenticated
	}
	return acc, err
}

// Revoke invalidates a session token ahead of its natural expiry. Revoking
// an already invalid token is not an error; logout is idempotent.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return nil
	}
	return s.Store.Sessions().RevokeSession(ctx, claims.ID, claims.ExpiresAt.Time)
}
