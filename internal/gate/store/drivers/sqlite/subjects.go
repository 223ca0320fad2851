package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradelane/tradegate/internal/gate/domain"
)

type subjectsRepo struct {
	q querier
}

const subjectColumns = `
	id, email, username, phone, is_verified,
	two_factor_secret, two_factor_pending_at, two_factor_enabled,
	created_at, updated_at`

func (r *subjectsRepo) GetSubjectByID(ctx context.Context, id string) (domain.Subject, error) {
	row := r.q.QueryRowContext(ctx, `SELECT`+subjectColumns+` FROM subjects WHERE id = ?`, id)
	return scanSubject(row)
}

func (r *subjectsRepo) UpsertSubject(ctx context.Context, s domain.Subject) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO subjects (id, email, username, phone, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email       = excluded.email,
			username    = excluded.username,
			phone       = excluded.phone,
			is_verified = excluded.is_verified,
			updated_at  = excluded.updated_at`,
		s.ID, s.Email, s.Username, s.Phone, s.IsVerified,
		time.Now().UTC(), time.Now().UTC(),
	)
	return err
}

func (r *subjectsRepo) SetPendingTwoFactorSecret(
	ctx context.Context,
	subjectID, ciphertext string,
	at time.Time,
) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subjects SET
			two_factor_secret     = ?,
			two_factor_pending_at = ?,
			two_factor_enabled    = NULL,
			updated_at            = ?
		WHERE id = ?`,
		ciphertext, at.UTC(), time.Now().UTC(), subjectID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *subjectsRepo) EnableTwoFactor(ctx context.Context, subjectID string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subjects SET
			two_factor_enabled    = ?,
			two_factor_pending_at = NULL,
			updated_at            = ?
		WHERE id = ? AND two_factor_secret IS NOT NULL`,
		at.UTC(), time.Now().UTC(), subjectID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *subjectsRepo) ClearStalePendingSecrets(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE subjects SET
			two_factor_secret     = NULL,
			two_factor_pending_at = NULL,
			updated_at            = ?
		WHERE two_factor_enabled IS NULL
		  AND two_factor_pending_at IS NOT NULL
		  AND two_factor_pending_at < ?`,
		time.Now().UTC(), before.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func scanSubject(row *sql.Row) (domain.Subject, error) {
	var (
		s       domain.Subject
		secret  sql.NullString
		pending sql.NullTime
		enabled sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.Email, &s.Username, &s.Phone, &s.IsVerified,
		&secret, &pending, &enabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Subject{}, mapNotFound(err)
	}
	s.TwoFactorSecret = fromNullString(secret)
	s.TwoFactorPendingAt = fromNullTime(pending)
	s.TwoFactorEnabled = fromNullTime(enabled)
	return s, nil
}
