package usecase_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/vault/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	root, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "  Work ", Description: "office"})
	require.NoError(t, err)
	assert.Equal(t, "Work", root.Name)
	assert.Equal(t, alice, root.UserID)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, now, root.CreatedAt)

	child, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "Email", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	_, err = e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "   "})
	requireGoError(t, err, goerror.CodeInvalidFormat, "Category name cannot be empty")

	_, err = e.uc.CategoryCreate(asUser(bob), usecase.CategoryCreateInput{Name: "Stolen", ParentID: &root.ID})
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")
}

func TestCategoryList_OwnOnlyOrderedByName(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: name})
		require.NoError(t, err)
	}
	_, err := e.uc.CategoryCreate(asUser(bob), usecase.CategoryCreateInput{Name: "Bob"})
	require.NoError(t, err)

	cats, err := e.uc.CategoryList(asUser(alice))
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Alpha", cats[0].Name)
	assert.Equal(t, "Zeta", cats[2].Name)
}

func TestCategoryGet_OtherUserIsNotFound(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	cat, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "Work"})
	require.NoError(t, err)

	got, err := e.uc.CategoryGet(asUser(alice), cat.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)

	_, err = e.uc.CategoryGet(asUser(bob), cat.ID)
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")

	_, err = e.uc.CategoryGet(asUser(alice), uuid.New())
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")
}

func TestCategoryUpdate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	a, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "A"})
	require.NoError(t, err)
	b, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	c, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "C", ParentID: &b.ID})
	require.NoError(t, err)

	got, err := e.uc.CategoryUpdate(asUser(alice), usecase.CategoryUpdateInput{ID: a.ID, Name: ptr(" Renamed "), Description: ptr("d")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "d", got.Description)

	tests := []struct {
		name string
		in   usecase.CategoryUpdateInput
		code goerror.Code
	}{
		{name: "self parent", in: usecase.CategoryUpdateInput{ID: a.ID, ParentID: &a.ID}, code: goerror.CodeInvalidInput},
		{name: "descendant parent", in: usecase.CategoryUpdateInput{ID: a.ID, ParentID: &c.ID}, code: goerror.CodeInvalidInput},
		{name: "unknown parent", in: usecase.CategoryUpdateInput{ID: a.ID, ParentID: ptr(uuid.New())}, code: goerror.CodeNotFound},
		{name: "empty name", in: usecase.CategoryUpdateInput{ID: a.ID, Name: ptr(" ")}, code: goerror.CodeInvalidFormat},
		{name: "unknown id", in: usecase.CategoryUpdateInput{ID: uuid.New(), Name: ptr("x")}, code: goerror.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.CategoryUpdate(asUser(alice), tt.in)
			requireGoError(t, err, tt.code, "")
		})
	}

	got, err = e.uc.CategoryUpdate(asUser(alice), usecase.CategoryUpdateInput{ID: c.ID, ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	_, err = e.uc.CategoryUpdate(asUser(bob), usecase.CategoryUpdateInput{ID: a.ID, Name: ptr("mine")})
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")
}

func TestCategoryDelete_DetachesCredentials(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	cat, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "Work"})
	require.NoError(t, err)
	cred, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: "mail", Password: "p", CategoryID: &cat.ID})
	require.NoError(t, err)

	listed, err := e.uc.CategoryCredentials(asUser(alice), cat.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	err = e.uc.CategoryDelete(asUser(bob), cat.ID)
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")

	require.NoError(t, e.uc.CategoryDelete(asUser(alice), cat.ID))

	got, err := e.uc.CredentialGet(asUser(alice), cred.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	_, err = e.uc.CategoryCredentials(asUser(alice), cat.ID)
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")
}

func TestCategoryList_RepositoryFailureIsInternal(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.db.failWith = errors.New("connection reset")

	_, err := e.uc.CategoryList(asUser(alice))
	requireGoError(t, err, goerror.CodeInternal, "Internal server error")
}
