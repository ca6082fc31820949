package memory

import (
	"context"
	"sync"
	"time"
)

type sessionsRepo struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newSessionsRepo() *sessionsRepo {
	return &sessionsRepo{revoked: make(map[string]time.Time)}
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.revoked[jti]; !ok {
		r.revoked[jti] = expiresAt
	}
	return nil
}

func (r *sessionsRepo) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.revoked[jti]
	return ok, nil
}

func (r *sessionsRepo) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for jti, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, jti)
			n++
		}
	}
	return n, nil
}
