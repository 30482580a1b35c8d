package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
)

const credentialColumns = `id, user_id, category_id, name, username, password, website, notes, created_at, updated_at`

func scanCredential(row pgx.Row) (*entity.Credential, error) {
	var c entity.Credential
	if err := row.Scan(
		&c.ID, &c.UserID, &c.CategoryID, &c.Name, &c.Username, &c.Password,
		&c.Website, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCredentials returns the owner's credentials by name, optionally limited to one category.
func (s *DB) ListCredentials(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) (_ []entity.Credential, err error) {
	ctx, span := s.startSpan(ctx, "ListCredentials")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
SELECT `+credentialColumns+` FROM credentials
WHERE user_id = $1 AND ($2::uuid IS NULL OR category_id = $2)
ORDER BY name, id`, userID, categoryID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := []entity.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetCredential(ctx context.Context, userID, id uuid.UUID) (_ *entity.Credential, err error) {
	ctx, span := s.startSpan(ctx, "GetCredential")
	defer func() { s.endSpan(span, err) }()

	cred, err := scanCredential(s.conn.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, s.mapError(err)
	}

	return cred, nil
}

func (s *DB) CreateCredential(ctx context.Context, in entity.Credential) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCredential")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
INSERT INTO credentials (id, user_id, category_id, name, username, password, website, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		in.ID, in.UserID, in.CategoryID, in.Name, in.Username, in.Password,
		in.Website, in.Notes, in.CreatedAt, in.UpdatedAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateCredential(ctx context.Context, in entity.CredentialUpdate) (_ *entity.Credential, err error) {
	ctx, span := s.startSpan(ctx, "UpdateCredential")
	defer func() { s.endSpan(span, err) }()

	cred, err := scanCredential(s.conn.QueryRow(ctx, `
UPDATE credentials SET
	category_id = CASE WHEN $4::boolean THEN NULL ELSE COALESCE($3, category_id) END,
	name = COALESCE($5, name),
	username = COALESCE($6, username),
	password = COALESCE($7, password),
	website = COALESCE($8, website),
	notes = COALESCE($9, notes),
	updated_at = $10
WHERE id = $1 AND user_id = $2
RETURNING `+credentialColumns,
		in.ID, in.UserID, in.CategoryID, in.ClearCategory, in.Name, in.Username, in.Password,
		in.Website, in.Notes, in.UpdatedAt,
	))
	if err != nil {
		return nil, s.mapError(err)
	}

	return cred, nil
}

func (s *DB) DeleteCredential(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCredential")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM credentials WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
	}
	return err
}
