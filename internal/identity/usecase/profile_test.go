package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestProfile(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	user := e.register(t, "alice", "correct horse")

	got, err := e.uc.Profile(asUser(user.ID))
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Empty(t, got.PasswordHash)
	assert.Empty(t, got.TOTPSecret)

	_, err = e.uc.Profile(context.Background())
	requireGoError(t, err, goerror.CodeUnauthorized, goerror.ReasonMissingOrMalformedHeader, "")
}

func TestProfileUpdate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	user := e.register(t, "alice", "correct horse")
	e.register(t, "bob", "correct horse")
	ctx := asUser(user.ID)
	e.clock.Advance(time.Hour)

	got, err := e.uc.ProfileUpdate(ctx, usecase.ProfileUpdateInput{Email: ptr(" Alice@New.example ")})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example", got.Email)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, now.Add(time.Hour), got.UpdatedAt)
	assert.NotContains(t, e.bus.kinds(), event.KindPasswordChanged)

	_, err = e.uc.ProfileUpdate(ctx, usecase.ProfileUpdateInput{Username: ptr("bob")})
	requireGoError(t, err, goerror.CodeConflict, goerror.ReasonNone, "Username already exists")

	_, err = e.uc.ProfileUpdate(ctx, usecase.ProfileUpdateInput{Email: ptr("bob@example.com")})
	requireGoError(t, err, goerror.CodeConflict, goerror.ReasonNone, "Email already exists")

	_, err = e.uc.ProfileUpdate(ctx, usecase.ProfileUpdateInput{Password: ptr("short")})
	requireGoError(t, err, goerror.CodeInvalidInput, goerror.ReasonNone, "")

	_, err = e.uc.ProfileUpdate(ctx, usecase.ProfileUpdateInput{Password: ptr("battery staple")})
	require.NoError(t, err)
	assert.Contains(t, e.bus.kinds(), event.KindPasswordChanged)

	_, err = e.uc.Login(context.Background(), usecase.LoginInput{Username: "alice", Password: "correct horse"})
	requireGoError(t, err, goerror.CodeUnauthorized, goerror.ReasonInvalidCredentials, "")

	_, err = e.uc.Login(context.Background(), usecase.LoginInput{Username: "alice", Password: "battery staple"})
	require.NoError(t, err)
}

func TestProfileUpdate_Empty(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	user := e.register(t, "alice", "correct horse")

	got, err := e.uc.ProfileUpdate(asUser(user.ID), usecase.ProfileUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, now, e.db.users[user.ID].UpdatedAt)
}
