package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
)

const selectUser = `
SELECT id, username, email, password_hash, COALESCE(totp_secret, ''), totp_state, created_at, updated_at, last_login
FROM users
`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u     entity.User
		state int16
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TOTPSecret, &state,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin,
	); err != nil {
		return nil, err
	}
	u.TOTPState = entity.TOTPState(state)

	return &u, nil
}

func (s *DB) GetUserByID(ctx context.Context, id uuid.UUID) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, selectUser+`WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, selectUser+`WHERE username = $1`, username))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}
