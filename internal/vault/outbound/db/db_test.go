package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/instrument"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/testinfra"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
	"github.com/shandysiswandi/dragonfruit/internal/vault/outbound/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, pool *pgxpool.Pool, name string) uuid.UUID {
	t.Helper()

	id := uuid.Must(uuid.NewV7())
	_, err := pool.Exec(context.Background(), `
INSERT INTO users (id, username, email, password_hash, totp_state, created_at, updated_at)
VALUES ($1, $2, $3, 'x', 0, $4, $4)`, id, name, name+"@example.com", at)
	require.NoError(t, err)
	return id
}

func TestDB(t *testing.T) {
	pool := testinfra.Postgres(t)
	repo := db.NewDB(pool, instrument.NewNoop())
	ctx := context.Background()

	alice := seedUser(t, pool, "vault-alice")
	bob := seedUser(t, pool, "vault-bob")

	work := entity.Category{ID: uuid.New(), UserID: alice, Name: "Work", CreatedAt: at, UpdatedAt: at}
	home := entity.Category{ID: uuid.New(), UserID: alice, Name: "Home", ParentID: &work.ID, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, repo.CreateCategory(ctx, work))
	require.NoError(t, repo.CreateCategory(ctx, home))

	t.Run("categories are scoped and ordered", func(t *testing.T) {
		cats, err := repo.ListCategories(ctx, alice)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, "Home", cats[0].Name)
		assert.Equal(t, work.ID, *cats[0].ParentID)

		cats, err = repo.ListCategories(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, cats)

		_, err = repo.GetCategory(ctx, bob, work.ID)
		require.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("update category", func(t *testing.T) {
		name := "Household"
		got, err := repo.UpdateCategory(ctx, entity.CategoryUpdate{
			ID: home.ID, UserID: alice, Name: &name, ClearParent: true, UpdatedAt: at.Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, "Household", got.Name)
		assert.Nil(t, got.ParentID)
		assert.True(t, got.UpdatedAt.Equal(at.Add(time.Hour)))

		_, err = repo.UpdateCategory(ctx, entity.CategoryUpdate{ID: home.ID, UserID: bob, Name: &name})
		require.ErrorIs(t, err, goerror.ErrNotFound)
	})

	gh := entity.Credential{
		ID: uuid.New(), UserID: alice, CategoryID: &work.ID, Name: "GitHub",
		Username: "alice", Password: "salt:cipher", CreatedAt: at, UpdatedAt: at,
	}
	mail := entity.Credential{ID: uuid.New(), UserID: alice, Name: "Mail", Password: "salt:cipher", CreatedAt: at, UpdatedAt: at}
	require.NoError(t, repo.CreateCredential(ctx, gh))
	require.NoError(t, repo.CreateCredential(ctx, mail))

	t.Run("list credentials with and without category", func(t *testing.T) {
		all, err := repo.ListCredentials(ctx, alice, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "GitHub", all[0].Name)

		inWork, err := repo.ListCredentials(ctx, alice, &work.ID)
		require.NoError(t, err)
		require.Len(t, inWork, 1)
		assert.Equal(t, gh.ID, inWork[0].ID)

		none, err := repo.ListCredentials(ctx, bob, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update credential", func(t *testing.T) {
		pw := "salt:rotated"
		got, err := repo.UpdateCredential(ctx, entity.CredentialUpdate{
			ID: mail.ID, UserID: alice, CategoryID: &home.ID, Password: &pw, UpdatedAt: at,
		})
		require.NoError(t, err)
		assert.Equal(t, "salt:rotated", got.Password)
		assert.Equal(t, "Mail", got.Name)
		assert.Equal(t, home.ID, *got.CategoryID)

		got, err = repo.UpdateCredential(ctx, entity.CredentialUpdate{ID: mail.ID, UserID: alice, ClearCategory: true, UpdatedAt: at})
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)

		_, err = repo.UpdateCredential(ctx, entity.CredentialUpdate{ID: mail.ID, UserID: bob, Password: &pw})
		require.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("deleting a category detaches its credentials", func(t *testing.T) {
		require.ErrorIs(t, repo.DeleteCategory(ctx, bob, work.ID), goerror.ErrNotFound)
		require.NoError(t, repo.DeleteCategory(ctx, alice, work.ID))

		got, err := repo.GetCredential(ctx, alice, gh.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("delete credential", func(t *testing.T) {
		require.ErrorIs(t, repo.DeleteCredential(ctx, bob, gh.ID), goerror.ErrNotFound)
		require.NoError(t, repo.DeleteCredential(ctx, alice, gh.ID))

		_, err := repo.GetCredential(ctx, alice, gh.ID)
		require.ErrorIs(t, err, goerror.ErrNotFound)
	})
}
