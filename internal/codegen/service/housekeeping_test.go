package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/service"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store/drivers/memory"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	stale := domain.SharedArtifact{
		ShareID: "stale1234567", OwnerID: 1, Language: "go",
		Prompt: "p", Code: "c", IsPublic: true,
		CreatedAt: now.Add(-31 * 24 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour),
	}
	fresh := domain.SharedArtifact{
		ShareID: "fresh1234567", OwnerID: 1, Language: "go",
		Prompt: "p", Code: "c", IsPublic: true,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, st.Artifacts().CreateArtifact(ctx, stale))
	require.NoError(t, st.Artifacts().CreateArtifact(ctx, fresh))
	require.NoError(t, st.Sessions().RevokeSession(ctx, "jti-old", now.Add(-time.Minute)))
	require.NoError(t, st.Sessions().RevokeSession(ctx, "jti-live", now.Add(time.Hour)))

	svc := service.NewHousekeepingService(st, slog.Default(), time.Hour)
	svc.Sweep(ctx)

	_, err := st.Artifacts().GetArtifactByShareID(ctx, stale.ShareID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Artifacts().GetArtifactByShareID(ctx, fresh.ShareID)
	require.NoError(t, err)

	revoked, err := st.Sessions().IsSessionRevoked(ctx, "jti-old")
	require.NoError(t, err)
	require.False(t, revoked)

	revoked, err = st.Sessions().IsSessionRevoked(ctx, "jti-live")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := memory.NewStore()
	svc := service.NewHousekeepingService(st, slog.Default(), 10*time.Millisecond)

	svc.Start()
	time.Sleep(30 * time.Millisecond)
	svc.Stop()
}
