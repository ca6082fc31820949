package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/domain"
)

type artifactsRepo struct {
	db *sql.DB
}

func (r *artifactsRepo) CreateArtifact(ctx context.Context, a domain.SharedArtifact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shared_artifacts (share_id, owner_id, language, prompt, code, is_public, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ShareID, a.OwnerID, a.Language, a.Prompt, a.Code, a.IsPublic, toUnix(a.CreatedAt), toUnix(a.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *artifactsRepo) GetArtifactByShareID(ctx context.Context, shareID string) (domain.SharedArtifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT share_id, owner_id, language, prompt, code, is_public, created_at, expires_at
		FROM shared_artifacts
		WHERE share_id = ?`,
		shareID,
	)
	return scanArtifact(row)
}

func (r *artifactsRepo) DeleteArtifact(ctx context.Context, shareID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shared_artifacts WHERE share_id = ?`, shareID)
	return err
}

func (r *artifactsRepo) ListArtifactsByOwner(ctx context.Context, ownerID int64, now time.Time) ([]domain.SharedArtifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT share_id, owner_id, language, prompt, code, is_public, created_at, expires_at
		FROM shared_artifacts
		WHERE owner_id = ? AND expires_at > ?
		ORDER BY created_at DESC, share_id`,
		ownerID, toUnix(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SharedArtifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *artifactsRepo) DeleteExpiredArtifacts(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shared_artifacts WHERE expires_at <= ?`, toUnix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (domain.SharedArtifact, error) {
	var (
		a         domain.SharedArtifact
		createdAt int64
		expiresAt int64
	)
	if err := row.Scan(&a.ShareID, &a.OwnerID, &a.Language, &a.Prompt, &a.Code, &a.IsPublic, &createdAt, &expiresAt); err != nil {
		return domain.SharedArtifact{}, mapNotFound(err)
	}
	a.CreatedAt = fromUnix(createdAt)
	a.ExpiresAt = fromUnix(expiresAt)
	return a, nil
}
