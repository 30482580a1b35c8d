package usecase_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/vault/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialCreate_EncryptsPassword(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	cred, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{
		Name:     " GitHub ",
		Username: "alice",
		Password: "hunter22",
		Website:  "https://github.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", cred.Name)
	assert.NotEqual(t, "hunter22", cred.Password)
	assert.NotContains(t, cred.Password, "hunter22")

	plain, err := e.cipher.Decrypt(e.db.credentials[cred.ID].Password, alice)
	require.NoError(t, err)
	assert.Equal(t, "hunter22", plain)

	_, err = e.cipher.Decrypt(e.db.credentials[cred.ID].Password, bob)
	require.Error(t, err)
}

func TestCredentialCreate_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	foreign, err := e.uc.CategoryCreate(asUser(bob), usecase.CategoryCreateInput{Name: "Bob"})
	require.NoError(t, err)

	_, err = e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: "  ", Password: "p"})
	requireGoError(t, err, goerror.CodeInvalidFormat, "Credential name cannot be empty")

	_, err = e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: "x", Password: "p", CategoryID: &foreign.ID})
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")

	_, err = e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: strings.Repeat("n", 201), Password: "p"})
	requireGoError(t, err, goerror.CodeInvalidInput, "")

	assert.Zero(t, e.db.creates)
}

func TestCredentialCreate_IdempotencyKey(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	in := usecase.CredentialCreateInput{IdempotencyKey: "req-1", Name: "GitHub", Password: "hunter22"}

	first, err := e.uc.CredentialCreate(asUser(alice), in)
	require.NoError(t, err)

	second, err := e.uc.CredentialCreate(asUser(alice), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, e.db.creates)

	other, err := e.uc.CredentialCreate(asUser(bob), in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, 2, e.db.creates)

	assert.True(t, e.redis.Exists("idempotency:credentials:"+alice.String()+":req-1"))
}

func TestCredentialCreate_IdempotencyInProgress(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	require.NoError(t, e.redis.Set("idempotency:credentials:"+alice.String()+":busy", "in_progress"))

	_, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{IdempotencyKey: "busy", Name: "x", Password: "p"})
	requireGoError(t, err, goerror.CodeConflict, "")
	assert.Zero(t, e.db.creates)
}

func TestCredentialCreate_FailedAttemptReleasesKey(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	in := usecase.CredentialCreateInput{IdempotencyKey: "retry", Name: "x", Password: "p", CategoryID: ptr(uuid.New())}

	_, err := e.uc.CredentialCreate(asUser(alice), in)
	requireGoError(t, err, goerror.CodeNotFound, "Category not found")
	assert.False(t, e.redis.Exists("idempotency:credentials:"+alice.String()+":retry"))

	in.CategoryID = nil
	_, err = e.uc.CredentialCreate(asUser(alice), in)
	require.NoError(t, err)
}

func TestCredentialReveal(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	cred, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: "GitHub", Password: "pässwörd 🔑"})
	require.NoError(t, err)

	out, err := e.uc.CredentialReveal(asUser(alice), cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "pässwörd 🔑", out.Password)

	_, err = e.uc.CredentialReveal(asUser(bob), cred.ID)
	requireGoError(t, err, goerror.CodeNotFound, "Credential not found")

	stored := e.db.credentials[cred.ID]
	stored.Password = "not-a-secret"
	e.db.credentials[cred.ID] = stored

	_, err = e.uc.CredentialReveal(asUser(alice), cred.ID)
	requireGoError(t, err, goerror.CodeInternal, "Internal server error")
}

func TestCredentialUpdate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	cat, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "Work"})
	require.NoError(t, err)
	cred, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: "GitHub", Password: "old"})
	require.NoError(t, err)

	e.clock.Advance(time.Minute)
	got, err := e.uc.CredentialUpdate(asUser(alice), usecase.CredentialUpdateInput{
		ID:         cred.ID,
		CategoryID: &cat.ID,
		Password:   ptr("new"),
		Notes:      ptr("rotated"),
	})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", got.Name)
	assert.Equal(t, "rotated", got.Notes)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.Equal(t, now.Add(time.Minute), got.UpdatedAt)

	out, err := e.uc.CredentialReveal(asUser(alice), cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", out.Password)

	got, err = e.uc.CredentialUpdate(asUser(alice), usecase.CredentialUpdateInput{ID: cred.ID, ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	_, err = e.uc.CredentialUpdate(asUser(alice), usecase.CredentialUpdateInput{ID: cred.ID, Name: ptr("")})
	requireGoError(t, err, goerror.CodeInvalidFormat, "Credential name cannot be empty")

	_, err = e.uc.CredentialUpdate(asUser(bob), usecase.CredentialUpdateInput{ID: cred.ID, Name: ptr("mine")})
	requireGoError(t, err, goerror.CodeNotFound, "Credential not found")
}

func TestCredentialListAndDelete(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	for _, name := range []string{"b", "a", "c"} {
		_, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: name, Password: "p"})
		require.NoError(t, err)
	}

	creds, err := e.uc.CredentialList(asUser(alice))
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, "a", creds[0].Name)

	none, err := e.uc.CredentialList(asUser(bob))
	require.NoError(t, err)
	assert.Empty(t, none)

	err = e.uc.CredentialDelete(asUser(bob), creds[0].ID)
	requireGoError(t, err, goerror.CodeNotFound, "Credential not found")

	require.NoError(t, e.uc.CredentialDelete(asUser(alice), creds[0].ID))

	_, err = e.uc.CredentialGet(asUser(alice), creds[0].ID)
	requireGoError(t, err, goerror.CodeNotFound, "Credential not found")
}

func TestExport(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	cat, err := e.uc.CategoryCreate(asUser(alice), usecase.CategoryCreateInput{Name: "Work"})
	require.NoError(t, err)
	cred, err := e.uc.CredentialCreate(asUser(alice), usecase.CredentialCreateInput{Name: "GitHub", Password: "hunter22", CategoryID: &cat.ID})
	require.NoError(t, err)

	out, err := e.uc.Export(asUser(alice))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Key, "exports/"+alice.String()+"/"))
	assert.Contains(t, out.URL, out.Key)
	assert.Equal(t, 10*time.Minute, e.blob.expiry)
	assert.Equal(t, now.Add(10*time.Minute), out.ExpiresAt)
	assert.Equal(t, "application/json", e.blob.types[out.Key])

	var doc struct {
		Format      string `json:"format"`
		Cipher      string `json:"cipher"`
		Categories  []struct{ Name string } `json:"categories"`
		Credentials []struct {
			ID       uuid.UUID `json:"id"`
			Password string    `json:"password"`
		} `json:"credentials"`
	}
	require.NoError(t, json.Unmarshal(e.blob.objects[out.Key], &doc))
	assert.Equal(t, "dragonfruit.vault.v1", doc.Format)
	assert.Equal(t, "aes-gcm", doc.Cipher)
	require.Len(t, doc.Categories, 1)
	require.Len(t, doc.Credentials, 1)
	assert.Equal(t, cred.ID, doc.Credentials[0].ID)
	assert.Equal(t, e.db.credentials[cred.ID].Password, doc.Credentials[0].Password)
	assert.NotContains(t, string(e.blob.objects[out.Key]), "hunter22")
}
