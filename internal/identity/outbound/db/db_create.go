package db

import (
	"context"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
)

func (s *DB) CreateUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
INSERT INTO users (id, username, email, password_hash, totp_state, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Email, user.PasswordHash, int16(user.TOTPState), user.CreatedAt, user.UpdatedAt,
	)
	err = s.mapError(err)
	return err
}
