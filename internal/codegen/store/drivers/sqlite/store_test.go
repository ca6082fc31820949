package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// A file-backed database: with in-memory DSNs every pooled connection
	// would see its own empty database.
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAccountsCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acc, err := s.Accounts().CreateAccount(ctx, "alice", "hash-a", nil, 50)
	require.NoError(t, err)
	require.Positive(t, acc.ID)
	require.Equal(t, "alice", acc.Username)
	require.Equal(t, 50, acc.QuotaRemaining)
	require.Nil(t, acc.FederatedID)
	require.WithinDuration(t, time.Now(), acc.CreatedAt, 5*time.Second)

	t.Run("by id", func(t *testing.T) {
		got, err := s.Accounts().GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		require.Equal(t, acc.Username, got.Username)
		require.Equal(t, acc.PasswordHash, got.PasswordHash)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := s.Accounts().GetAccountByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, acc.ID, got.ID)
	})

	t.Run("unknown lookups", func(t *testing.T) {
		_, err := s.Accounts().GetAccountByID(ctx, 9999)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Accounts().GetAccountByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ids are monotonic", func(t *testing.T) {
		b, err := s.Accounts().CreateAccount(ctx, "bob", "hash-b", nil, 50)
		require.NoError(t, err)
		require.Greater(t, b.ID, acc.ID)
	})
}

func TestAccountsUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Accounts().CreateAccount(ctx, "carol", "hash", nil, 50)
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.Accounts().CreateAccount(ctx, "carol", "other", nil, 50)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate federated id", func(t *testing.T) {
		fed := "google:12345"
		_, err := s.Accounts().CreateAccount(ctx, "dave", "hash", &fed, 50)
		require.NoError(t, err)

		_, err = s.Accounts().CreateAccount(ctx, "erin", "hash", &fed, 50)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("lookup by federated id", func(t *testing.T) {
		fed := "google:67890"
		created, err := s.Accounts().CreateAccount(ctx, "frank", "hash", &fed, 50)
		require.NoError(t, err)

		got, err := s.Accounts().GetAccountByFederatedID(ctx, fed)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.NotNil(t, got.FederatedID)
		require.Equal(t, fed, *got.FederatedID)

		_, err = s.Accounts().GetAccountByFederatedID(ctx, "google:none")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestConsumeQuota(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acc, err := s.Accounts().CreateAccount(ctx, "grace", "hash", nil, 3)
	require.NoError(t, err)

	t.Run("counts down to zero", func(t *testing.T) {
		for want := 2; want >= 0; want-- {
			remaining, err := s.Accounts().ConsumeQuota(ctx, acc.ID)
			require.NoError(t, err)
			require.Equal(t, want, remaining)
		}
	})

	t.Run("exhausted counter stays at zero", func(t *testing.T) {
		_, err := s.Accounts().ConsumeQuota(ctx, acc.ID)
		require.ErrorIs(t, err, store.ErrQuotaExhausted)

		got, err := s.Accounts().GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		require.Equal(t, 0, got.QuotaRemaining)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := s.Accounts().ConsumeQuota(ctx, 9999)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("reset one account", func(t *testing.T) {
		require.NoError(t, s.Accounts().ResetQuota(ctx, acc.ID, 10))

		got, err := s.Accounts().GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		require.Equal(t, 10, got.QuotaRemaining)

		require.ErrorIs(t, s.Accounts().ResetQuota(ctx, 9999, 10), store.ErrNotFound)
	})

	t.Run("reset replenishes everyone", func(t *testing.T) {
		other, err := s.Accounts().CreateAccount(ctx, "heidi", "hash", nil, 1)
		require.NoError(t, err)

		require.NoError(t, s.Accounts().ResetAllQuotas(ctx, 50))

		for _, id := range []int64{acc.ID, other.ID} {
			got, err := s.Accounts().GetAccountByID(ctx, id)
			require.NoError(t, err)
			require.Equal(t, 50, got.QuotaRemaining)
		}
	})
}

func TestArtifactsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	owner, err := s.Accounts().CreateAccount(ctx, "ivan", "hash", nil, 50)
	require.NoError(t, err)

	artifact := domain.SharedArtifact{
		ShareID:   "abc123def456",
		OwnerID:   owner.ID,
		Language:  "go",
		Prompt:    "a worker pool",
		Code:      "package main",
		IsPublic:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, s.Artifacts().CreateArtifact(ctx, artifact))

	t.Run("share id collision", func(t *testing.T) {
		err := s.Artifacts().CreateArtifact(ctx, artifact)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("fetch by share id", func(t *testing.T) {
		got, err := s.Artifacts().GetArtifactByShareID(ctx, artifact.ShareID)
		require.NoError(t, err)
		require.Equal(t, artifact, got)
	})

	t.Run("unknown share id", func(t *testing.T) {
		_, err := s.Artifacts().GetArtifactByShareID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		victim := artifact
		victim.ShareID = "deleteme1234"
		require.NoError(t, s.Artifacts().CreateArtifact(ctx, victim))

		require.NoError(t, s.Artifacts().DeleteArtifact(ctx, victim.ShareID))
		_, err := s.Artifacts().GetArtifactByShareID(ctx, victim.ShareID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestArtifactsExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	owner, err := s.Accounts().CreateAccount(ctx, "judy", "hash", nil, 50)
	require.NoError(t, err)

	fresh := domain.SharedArtifact{
		ShareID: "fresh1234567", OwnerID: owner.ID, Language: "python",
		Prompt: "p", Code: "c", IsPublic: true,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	stale := domain.SharedArtifact{
		ShareID: "stale1234567", OwnerID: owner.ID, Language: "python",
		Prompt: "p", Code: "c", IsPublic: true,
		CreatedAt: now.Add(-31 * 24 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour),
	}
	require.NoError(t, s.Artifacts().CreateArtifact(ctx, fresh))
	require.NoError(t, s.Artifacts().CreateArtifact(ctx, stale))

	t.Run("listing skips expired and orders newest first", func(t *testing.T) {
		older := fresh
		older.ShareID = "older1234567"
		older.CreatedAt = now.Add(-time.Hour)
		require.NoError(t, s.Artifacts().CreateArtifact(ctx, older))

		list, err := s.Artifacts().ListArtifactsByOwner(ctx, owner.ID, now)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, fresh.ShareID, list[0].ShareID)
		require.Equal(t, older.ShareID, list[1].ShareID)
	})

	t.Run("expired record is still fetchable raw", func(t *testing.T) {
		got, err := s.Artifacts().GetArtifactByShareID(ctx, stale.ShareID)
		require.NoError(t, err)
		require.True(t, got.Expired(now))
	})

	t.Run("sweep removes expired records", func(t *testing.T) {
		n, err := s.Artifacts().DeleteExpiredArtifacts(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = s.Artifacts().GetArtifactByShareID(ctx, stale.ShareID)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Artifacts().GetArtifactByShareID(ctx, fresh.ShareID)
		require.NoError(t, err)
	})
}

func TestSessionsRevocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		revoked, err := s.Sessions().IsSessionRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("revoke then check", func(t *testing.T) {
		require.NoError(t, s.Sessions().RevokeSession(ctx, "jti-1", now.Add(time.Hour)))

		revoked, err := s.Sessions().IsSessionRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("revoking twice is a no-op", func(t *testing.T) {
		require.NoError(t, s.Sessions().RevokeSession(ctx, "jti-1", now.Add(time.Hour)))
	})

	t.Run("prune drops expired entries only", func(t *testing.T) {
		require.NoError(t, s.Sessions().RevokeSession(ctx, "jti-old", now.Add(-time.Minute)))

		n, err := s.Sessions().DeleteExpiredRevocations(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		revoked, err := s.Sessions().IsSessionRevoked(ctx, "jti-old")
		require.NoError(t, err)
		require.False(t, revoked)

		revoked, err = s.Sessions().IsSessionRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)
	})
}
