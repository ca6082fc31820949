package memory

import (
	"context"
	"sync"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
)

type accountsRepo struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]*domain.Account
	byUsername map[string]int64
	byFedID    map[string]int64
}

func newAccountsRepo() *accountsRepo {
	return &accountsRepo{
		nextID:     1,
		byID:       make(map[int64]*domain.Account),
		byUsername: make(map[string]int64),
		byFedID:    make(map[string]int64),
	}
}

func (r *accountsRepo) CreateAccount(ctx context.Context, username, passwordHash string, federatedID *string, quota int) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[username]; taken {
		return domain.Account{}, store.ErrAlreadyExists
	}
	if federatedID != nil {
		if _, taken := r.byFedID[*federatedID]; taken {
			return domain.Account{}, store.ErrAlreadyExists
		}
	}

	acc := domain.Account{
		ID:             r.nextID,
		Username:       username,
		PasswordHash:   passwordHash,
		FederatedID:    federatedID,
		QuotaRemaining: quota,
		CreatedAt:      time.Now().UTC(),
	}
	r.nextID++

	r.byID[acc.ID] = &acc
	r.byUsername[username] = acc.ID
	if federatedID != nil {
		r.byFedID[*federatedID] = acc.ID
	}
	return acc, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id int64) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return *acc, nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUsername[username]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return *r.byID[id], nil
}

func (r *accountsRepo) GetAccountByFederatedID(ctx context.Context, federatedID string) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byFedID[federatedID]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return *r.byID[id], nil
}

func (r *accountsRepo) ConsumeQuota(ctx context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	if acc.QuotaRemaining <= 0 {
		return 0, store.ErrQuotaExhausted
	}
	acc.QuotaRemaining--
	return acc.QuotaRemaining, nil
}

func (r *accountsRepo) ResetQuota(ctx context.Context, id int64, ceiling int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	acc.QuotaRemaining = ceiling
	return nil
}

func (r *accountsRepo) ResetAllQuotas(ctx context.Context, ceiling int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, acc := range r.byID {
		acc.QuotaRemaining = ceiling
	}
	return nil
}
