package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
)

func (s *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// EnableTOTP moves a Pending account to Enabled and replaces its recovery codes.
func (s *DB) EnableTOTP(ctx context.Context, id uuid.UUID, codes []entity.RecoveryCode, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "EnableTOTP")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE users SET totp_state = $2, updated_at = $3
WHERE id = $1 AND totp_state = $4 AND totp_secret IS NOT NULL`,
			id, int16(entity.TOTPStateEnabled), at, int16(entity.TOTPStatePending),
		)
		if err != nil {
			return s.mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return entity.ErrTOTPTransition
		}

		if _, err := tx.Exec(ctx, `DELETE FROM user_recovery_codes WHERE user_id = $1`, id); err != nil {
			return s.mapError(err)
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"user_recovery_codes"},
			[]string{"id", "user_id", "code_hash", "created_at"},
			pgx.CopyFromSlice(len(codes), func(i int) ([]any, error) {
				return []any{codes[i].ID, id, codes[i].CodeHash, codes[i].CreatedAt}, nil
			}),
		)
		return s.mapError(err)
	})
	return err
}

// DisableTOTP clears the secret of an Enabled account and removes its recovery codes.
func (s *DB) DisableTOTP(ctx context.Context, id uuid.UUID, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "DisableTOTP")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE users SET totp_state = $2, totp_secret = NULL, updated_at = $3
WHERE id = $1 AND totp_state = $4`,
			id, int16(entity.TOTPStateDisabled), at, int16(entity.TOTPStateEnabled),
		)
		if err != nil {
			return s.mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return entity.ErrTOTPTransition
		}

		_, err = tx.Exec(ctx, `DELETE FROM user_recovery_codes WHERE user_id = $1`, id)
		return s.mapError(err)
	})
	return err
}
