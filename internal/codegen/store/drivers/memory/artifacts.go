package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
)

type artifactsRepo struct {
	mu        sync.Mutex
	byShareID map[string]domain.SharedArtifact
}

func newArtifactsRepo() *artifactsRepo {
	return &artifactsRepo{byShareID: make(map[string]domain.SharedArtifact)}
}

func (r *artifactsRepo) CreateArtifact(ctx context.Context, a domain.SharedArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byShareID[a.ShareID]; taken {
		return store.ErrAlreadyExists
	}
	r.byShareID[a.ShareID] = a
	return nil
}

func (r *artifactsRepo) GetArtifactByShareID(ctx context.Context, shareID string) (domain.SharedArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byShareID[shareID]
	if !ok {
		return domain.SharedArtifact{}, store.ErrNotFound
	}
	return a, nil
}

func (r *artifactsRepo) DeleteArtifact(ctx context.Context, shareID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byShareID, shareID)
	return nil
}

func (r *artifactsRepo) ListArtifactsByOwner(ctx context.Context, ownerID int64, now time.Time) ([]domain.SharedArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.SharedArtifact
	for _, a := range r.byShareID {
		if a.OwnerID == ownerID && !a.Expired(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ShareID < out[j].ShareID
	})
	return out, nil
}

func (r *artifactsRepo) DeleteExpiredArtifacts(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, a := range r.byShareID {
		if a.Expired(now) {
			delete(r.byShareID, id)
			n++
		}
	}
	return n, nil
}
