package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
)

type accountsRepo struct {
	db *sql.DB
}

func (r *accountsRepo) CreateAccount(ctx context.Context, username, passwordHash string, federatedID *string, quota int) (domain.Account, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (username, password_hash, federated_id, quota_remaining, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		username, passwordHash, mapOptionalString(federatedID), quota, toUnix(now),
	)
	if err != nil {
		return domain.Account{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Account{}, err
	}

	return domain.Account{
		ID:             id,
		Username:       username,
		PasswordHash:   passwordHash,
		FederatedID:    federatedID,
		QuotaRemaining: quota,
		CreatedAt:      now,
	}, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id int64) (domain.Account, error) {
	return r.getAccount(ctx, `WHERE id = ?`, id)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getAccount(ctx, `WHERE username = ?`, username)
}

func (r *accountsRepo) GetAccountByFederatedID(ctx context.Context, federatedID string) (domain.Account, error) {
	return r.getAccount(ctx, `WHERE federated_id = ?`, federatedID)
}

func (r *accountsRepo) getAccount(ctx context.Context, where string, arg any) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, federated_id, quota_remaining, created_at
		FROM accounts `+where, arg,
	)

	var (
		a         domain.Account
		fed       sql.NullString
		createdAt int64
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &fed, &a.QuotaRemaining, &createdAt); err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.FederatedID = mapNullStringPtr(fed)
	a.CreatedAt = fromUnix(createdAt)
	return a, nil
}

// ConsumeQuota decrements in a single guarded UPDATE so concurrent callers
// can never drive the counter below zero.
func (r *accountsRepo) ConsumeQuota(ctx context.Context, id int64) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET quota_remaining = quota_remaining - 1
		WHERE id = ? AND quota_remaining > 0
		RETURNING quota_remaining`,
		id,
	)

	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		// No row updated: either the account is unknown or the counter
		// is already at zero.
		if _, err := r.GetAccountByID(ctx, id); err != nil {
			return 0, err
		}
		return 0, store.ErrQuotaExhausted
	}
	return remaining, nil
}

func (r *accountsRepo) ResetQuota(ctx context.Context, id int64, ceiling int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET quota_remaining = ? WHERE id = ?`, ceiling, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) ResetAllQuotas(ctx context.Context, ceiling int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET quota_remaining = ?`, ceiling)
	return err
}
