package store

import (
	"context"
	"errors"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned when an insert violates a uniqueness
	// constraint (username, federated id, share id).
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrQuotaExhausted is returned by ConsumeQuota when the counter is
	// already at zero. The counter is never driven negative.
	ErrQuotaExhausted = errors.New("store: quota exhausted")
)

// Store aggregates the repositories behind a single driver. Implementations
// must be safe for concurrent use.
type Store interface {
	Accounts() Accounts
	Artifacts() Artifacts
	Sessions() Sessions

	// ApplyMigrations brings the schema up to date. Drivers without a
	// persistent schema treat this as a no-op.
	ApplyMigrations() error

	Ping(ctx context.Context) error
	Close() error
}

// Accounts persists registered identities and their quota counters.
type Accounts interface {
	// CreateAccount inserts a new account with the given starting quota.
	// Returns ErrAlreadyExists if the username (or federated id, when set)
	// is taken. Uniqueness is enforced atomically against concurrent
	// inserts.
	CreateAccount(ctx context.Context, username, passwordHash string, federatedID *string, quota int) (domain.Account, error)

	GetAccountByID(ctx context.Context, id int64) (domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)
	GetAccountByFederatedID(ctx context.Context, federatedID string) (domain.Account, error)

	// ConsumeQuota atomically decrements the account's counter and returns
	// the remaining value. Returns ErrQuotaExhausted when the counter is
	// already zero and ErrNotFound for unknown accounts.
	ConsumeQuota(ctx context.Context, id int64) (int, error)

	// ResetQuota sets one account's counter back to the ceiling.
	ResetQuota(ctx context.Context, id int64, ceiling int) error

	// ResetAllQuotas sets every account's counter back to the ceiling.
	ResetAllQuotas(ctx context.Context, ceiling int) error
}

// Artifacts persists published code snippets.
type Artifacts interface {
	// CreateArtifact inserts a new record. Returns ErrAlreadyExists on a
	// share id collision so the caller can retry with a fresh token.
	CreateArtifact(ctx context.Context, a domain.SharedArtifact) error

	// GetArtifactByShareID returns the record regardless of expiry; the
	// caller decides whether it is still servable.
	GetArtifactByShareID(ctx context.Context, shareID string) (domain.SharedArtifact, error)

	DeleteArtifact(ctx context.Context, shareID string) error

	// ListArtifactsByOwner returns the owner's unexpired artifacts, newest
	// first.
	ListArtifactsByOwner(ctx context.Context, ownerID int64, now time.Time) ([]domain.SharedArtifact, error)

	// DeleteExpiredArtifacts removes every record past its expiry and
	// returns how many were dropped.
	DeleteExpiredArtifacts(ctx context.Context, now time.Time) (int64, error)
}

// Sessions tracks revoked session ids so logout invalidates a token before
// its natural expiry.
type Sessions interface {
	RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevocations prunes entries whose token would have
	// expired anyway.
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error)
}
