package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
)

func (s *DB) UpdateUser(ctx context.Context, in entity.UserUpdate) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE users SET
	username = COALESCE($2, username),
	email = COALESCE($3, email),
	password_hash = COALESCE($4, password_hash),
	updated_at = $5
WHERE id = $1`,
		in.ID, in.Username, in.Email, in.PasswordHash, in.UpdatedAt,
	)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
	}
	return err
}

func (s *DB) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateLastLogin")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePasswordHash")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
	err = s.mapError(err)
	return err
}

// SetTOTPPending stores a new sealed secret unless TOTP is currently enabled.
func (s *DB) SetTOTPPending(ctx context.Context, id uuid.UUID, sealedSecret string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "SetTOTPPending")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE users SET totp_secret = $2, totp_state = $3, updated_at = $4
WHERE id = $1 AND totp_state <> $5`,
		id, sealedSecret, int16(entity.TOTPStatePending), at, int16(entity.TOTPStateEnabled),
	)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = entity.ErrTOTPTransition
	}
	return err
}

// UseRecoveryCode marks the matching unused code as used. It reports false
// when no unused code matched, so a code is accepted at most once.
func (s *DB) UseRecoveryCode(ctx context.Context, userID uuid.UUID, codeHash string, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "UseRecoveryCode")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
UPDATE user_recovery_codes SET used_at = $3
WHERE user_id = $1 AND code_hash = $2 AND used_at IS NULL`,
		userID, codeHash, at,
	)
	if err != nil {
		err = s.mapError(err)
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
