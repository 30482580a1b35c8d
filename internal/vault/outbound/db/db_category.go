package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
)

const categoryColumns = `id, user_id, parent_id, name, description, created_at, updated_at`

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.ParentID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *DB) ListCategories(ctx context.Context, userID uuid.UUID) (_ []entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "ListCategories")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name, id`, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := []entity.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
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

func (s *DB) GetCategory(ctx context.Context, userID, id uuid.UUID) (_ *entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "GetCategory")
	defer func() { s.endSpan(span, err) }()

	cat, err := scanCategory(s.conn.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, s.mapError(err)
	}

	return cat, nil
}

func (s *DB) CreateCategory(ctx context.Context, in entity.Category) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCategory")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
INSERT INTO categories (id, user_id, parent_id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.UserID, in.ParentID, in.Name, in.Description, in.CreatedAt, in.UpdatedAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateCategory(ctx context.Context, in entity.CategoryUpdate) (_ *entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "UpdateCategory")
	defer func() { s.endSpan(span, err) }()

	cat, err := scanCategory(s.conn.QueryRow(ctx, `
UPDATE categories SET
	name = COALESCE($3, name),
	description = COALESCE($4, description),
	parent_id = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($5, parent_id) END,
	updated_at = $7
WHERE id = $1 AND user_id = $2
RETURNING `+categoryColumns,
		in.ID, in.UserID, in.Name, in.Description, in.ParentID, in.ClearParent, in.UpdatedAt,
	))
	if err != nil {
		return nil, s.mapError(err)
	}

	return cat, nil
}

func (s *DB) DeleteCategory(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCategory")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
	}
	return err
}
