package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	// Revoking the same session twice is a no-op.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_sessions (jti, expires_at)
		VALUES (?, ?)
		ON CONFLICT (jti) DO NOTHING`,
		jti, toUnix(expiresAt),
	)
	return err
}

func (r *sessionsRepo) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT 1 FROM revoked_sessions WHERE jti = ?`, jti)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *sessionsRepo) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at <= ?`, toUnix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
