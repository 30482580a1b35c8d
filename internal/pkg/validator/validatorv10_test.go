package validator_test

import (
	"strings"
	"testing"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	TOTPCode string `validate:"omitempty,otp"`
}

func TestV10Validator(t *testing.T) {
	t.Parallel()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	require.NoError(t, v.Validate(registerInput{
		Username: "alice_01",
		Email:    "alice@example.com",
		Password: "correct horse",
		TOTPCode: "123456",
	}))

	err = v.Validate(registerInput{
		Username: "a",
		Email:    "not-an-email",
		Password: "short",
		TOTPCode: "12ab56",
	})
	require.Error(t, err)

	var fields validator.V10ValidationError
	require.ErrorAs(t, err, &fields)

	assert.Contains(t, fields.Values(), "username")
	assert.Contains(t, fields.Values(), "email")
	assert.Equal(t, "Password must be 8-72 characters", fields["password"])
	assert.Contains(t, fields["totp_code"], "6 to 8 digit code")
}

func TestV10Validator_PasswordBounds(t *testing.T) {
	t.Parallel()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	in := registerInput{Username: "alice", Email: "alice@example.com"}

	in.Password = strings.Repeat("p", 72)
	require.NoError(t, v.Validate(in))

	in.Password = strings.Repeat("p", 73)
	require.Error(t, v.Validate(in))
}

func TestV10Validator_BuiltinTagsKeepTranslations(t *testing.T) {
	t.Parallel()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	type categoryInput struct {
		Name string `validate:"required,alphaspace"`
	}

	require.NoError(t, v.Validate(categoryInput{Name: "Work Accounts"}))

	err = v.Validate(categoryInput{Name: "Work_42"})
	var fields validator.V10ValidationError
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields["name"], "Name")
	assert.NotContains(t, fields["name"], "Key: ")
}
