package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
	"github.com/adwaithkm1/web-code-generator/pkg/cryptox"
	"github.com/adwaithkm1/web-code-generator/pkg/slogx"
)

var ErrShareNotFound = errors.New("share_not_found")

// ShareTTL is how long a published artifact stays reachable.
const ShareTTL = 30 * 24 * time.Hour

// shareIDRetries bounds the collision retry loop when minting share ids.
// With 72-bit random ids a single collision is already implausible.
const shareIDRetries = 3

// ShareService publishes generated artifacts under unguessable share ids and
// serves them back until they expire.
type ShareService struct {
	Store store.Store
	TTL   time.Duration

	// Now is the clock; nil means time.Now. Tests override it.
	Now func() time.Time
}

func (s *ShareService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ShareService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return ShareTTL
}

// Publish stores an artifact under a fresh random share id and returns the
// stored record. The expiry is fixed at creation and never extended.
func (s *ShareService) Publish(ctx context.Context, ownerID int64, language, prompt, code string, isPublic bool) (domain.SharedArtifact, error) {
	l := slogx.FromContext(ctx)
	now := s.now().UTC()

	var lastErr error
	for range shareIDRetries {
		shareID, err := cryptox.GenerateToken(cryptox.TokenSizeShareID)
		if err != nil {
			return domain.SharedArtifact{}, err
		}

		artifact := domain.SharedArtifact{
			ShareID:   shareID,
			OwnerID:   ownerID,
			Language:  language,
			Prompt:    prompt,
			Code:      code,
			IsPublic:  isPublic,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl()),
		}

		err = s.Store.Artifacts().CreateArtifact(ctx, artifact)
		if err == nil {
			l.Info("artifact shared",
				slog.String("share_id", shareID),
				slog.Int64("owner_id", ownerID),
			)
			return artifact, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return domain.SharedArtifact{}, err
		}
		lastErr = err
	}
	return domain.SharedArtifact{}, lastErr
}

// Get returns the artifact for a share id. Expired artifacts read as absent
// and are evicted on the spot, so a dead link never comes back to life.
func (s *ShareService) Get(ctx context.Context, shareID string) (domain.SharedArtifact, error) {
	artifact, err := s.Store.Artifacts().GetArtifactByShareID(ctx, shareID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SharedArtifact{}, ErrShareNotFound
		}
		return domain.SharedArtifact{}, err
	}

	if artifact.Expired(s.now()) {
		if err := s.Store.Artifacts().DeleteArtifact(ctx, shareID); err != nil {
			slogx.FromContext(ctx).Warn("lazy eviction failed",
				slog.String("share_id", shareID), slog.Any("error", err))
		}
		return domain.SharedArtifact{}, ErrShareNotFound
	}
	return artifact, nil
}

// ListByOwner returns the owner's unexpired artifacts, newest first.
func (s *ShareService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.SharedArtifact, error) {
	return s.Store.Artifacts().ListArtifactsByOwner(ctx, ownerID, s.now())
}
