package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store/drivers/memory"
	"github.com/stretchr/testify/require"
)

func TestAccountsBasics(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	acc, err := s.Accounts().CreateAccount(ctx, "alice", "hash", nil, 50)
	require.NoError(t, err)
	require.EqualValues(t, 1, acc.ID)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := s.Accounts().CreateAccount(ctx, "alice", "other", nil, 50)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("ids are monotonic", func(t *testing.T) {
		b, err := s.Accounts().CreateAccount(ctx, "bob", "hash", nil, 50)
		require.NoError(t, err)
		require.EqualValues(t, 2, b.ID)
	})

	t.Run("federated lookup", func(t *testing.T) {
		fed := "google:111"
		created, err := s.Accounts().CreateAccount(ctx, "carol", "hash", &fed, 50)
		require.NoError(t, err)

		got, err := s.Accounts().GetAccountByFederatedID(ctx, fed)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)

		_, err = s.Accounts().CreateAccount(ctx, "dave", "hash", &fed, 50)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("returned accounts are copies", func(t *testing.T) {
		got, err := s.Accounts().GetAccountByUsername(ctx, "alice")
		require.NoError(t, err)
		got.QuotaRemaining = 0

		again, err := s.Accounts().GetAccountByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 50, again.QuotaRemaining)
	})
}

func TestConcurrentRegistration(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	const racers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Accounts().CreateAccount(ctx, "contested", fmt.Sprintf("hash-%d", i), nil, 50)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				require.ErrorIs(t, err, store.ErrAlreadyExists)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, succeeded, "exactly one registration may win the race")
}

func TestConcurrentQuotaConsumption(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	acc, err := s.Accounts().CreateAccount(ctx, "erin", "hash", nil, 50)
	require.NoError(t, err)

	const attempts = 80
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Accounts().ConsumeQuota(ctx, acc.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				require.ErrorIs(t, err, store.ErrQuotaExhausted)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 50, succeeded, "successes must equal the starting quota")

	got, err := s.Accounts().GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.QuotaRemaining, "counter never goes negative")

	t.Run("reset replenishes to the ceiling", func(t *testing.T) {
		require.NoError(t, s.Accounts().ResetAllQuotas(ctx, 50))

		remaining, err := s.Accounts().ConsumeQuota(ctx, acc.ID)
		require.NoError(t, err)
		require.Equal(t, 49, remaining)
	})
}

func TestArtifacts(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	mk := func(shareID string, createdAt, expiresAt time.Time) domain.SharedArtifact {
		return domain.SharedArtifact{
			ShareID: shareID, OwnerID: 1, Language: "go",
			Prompt: "p", Code: "c", IsPublic: true,
			CreatedAt: createdAt, ExpiresAt: expiresAt,
		}
	}

	fresh := mk("fresh1234567", now, now.Add(time.Hour))
	older := mk("older1234567", now.Add(-time.Minute), now.Add(time.Hour))
	stale := mk("stale1234567", now.Add(-48*time.Hour), now.Add(-time.Hour))

	for _, a := range []domain.SharedArtifact{fresh, older, stale} {
		require.NoError(t, s.Artifacts().CreateArtifact(ctx, a))
	}

	t.Run("collision rejected", func(t *testing.T) {
		require.ErrorIs(t, s.Artifacts().CreateArtifact(ctx, fresh), store.ErrAlreadyExists)
	})

	t.Run("list filters expiry and orders newest first", func(t *testing.T) {
		list, err := s.Artifacts().ListArtifactsByOwner(ctx, 1, now)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, fresh.ShareID, list[0].ShareID)
		require.Equal(t, older.ShareID, list[1].ShareID)
	})

	t.Run("sweep removes expired", func(t *testing.T) {
		n, err := s.Artifacts().DeleteExpiredArtifacts(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = s.Artifacts().GetArtifactByShareID(ctx, stale.ShareID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSessions(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Sessions().RevokeSession(ctx, "jti-a", now.Add(time.Hour)))
	require.NoError(t, s.Sessions().RevokeSession(ctx, "jti-old", now.Add(-time.Minute)))

	revoked, err := s.Sessions().IsSessionRevoked(ctx, "jti-a")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = s.Sessions().IsSessionRevoked(ctx, "jti-b")
	require.NoError(t, err)
	require.False(t, revoked)

	n, err := s.Sessions().DeleteExpiredRevocations(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
