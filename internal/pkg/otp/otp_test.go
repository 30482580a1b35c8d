package otp_test

import (
	"bytes"
	"encoding/base32"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "12345678901234567890" in ASCII, the RFC 4226 / 6238 SHA1 seed.
var rfcSecret = base32.StdEncoding.EncodeToString([]byte("12345678901234567890"))

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{})

	secret, uri, err := o.GenerateSecret("DragonFruit", "0190b7a2-7c1d-7000-8000-000000000001")
	require.NoError(t, err)

	raw, err := base32.StdEncoding.DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, raw, otp.SecretSize)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z2-7]+=*$`), secret)

	want := "otpauth://totp/DragonFruit:0190b7a2-7c1d-7000-8000-000000000001?secret=" + secret + "&issuer=DragonFruit"
	assert.Equal(t, want, uri)

	other, _, err := o.GenerateSecret("", "acct")
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestCode_RFC6238SixDigits(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{})

	code, err := o.Code(rfcSecret, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}

func TestCode_RFC6238EightDigits(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{Digits: pqotp.DigitsEight})

	tests := []struct {
		unix int64
		want string
	}{
		{unix: 59, want: "94287082"},
		{unix: 1111111109, want: "07081804"},
		{unix: 1111111111, want: "14050471"},
		{unix: 1234567890, want: "89005924"},
		{unix: 2000000000, want: "69279037"},
		{unix: 20000000000, want: "65353130"},
	}

	for _, tt := range tests {
		code, err := o.Code(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, code, "t=%d", tt.unix)
	}
}

func TestParseDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      int
		want    pqotp.Digits
		wantErr bool
	}{
		{in: 0, want: pqotp.DigitsSix},
		{in: 6, want: pqotp.DigitsSix},
		{in: 7, want: pqotp.Digits(7)},
		{in: 8, want: pqotp.DigitsEight},
		{in: 5, wantErr: true},
		{in: 9, wantErr: true},
		{in: -6, wantErr: true},
	}

	for _, tt := range tests {
		got, err := otp.ParseDigits(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, otp.ErrUnsupportedDigits, "in=%d", tt.in)
			continue
		}
		require.NoError(t, err, "in=%d", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCode_SevenDigitsNotRemapped(t *testing.T) {
	t.Parallel()

	digits, err := otp.ParseDigits(7)
	require.NoError(t, err)

	code, err := otp.NewTOTP(otp.Config{Digits: digits}).Code(rfcSecret, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, "4287082", code)
}

func TestCode_MalformedSecret(t *testing.T) {
	t.Parallel()

	_, err := otp.NewTOTP(otp.Config{}).Code("not base32 !!", time.Unix(59, 0))
	require.ErrorIs(t, err, otp.ErrMalformedSecret)
}

func TestVerify_ExactStepOnly(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{})
	at := time.Unix(1_700_000_010, 0)

	code, err := o.Code(rfcSecret, at)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "same instant", at: at, want: true},
		{name: "end of same step", at: time.Unix(1_700_000_009+30-10, 0), want: true},
		{name: "previous step", at: at.Add(-30 * time.Second), want: false},
		{name: "next step", at: at.Add(30 * time.Second), want: false},
	}

	for _, tt := range tests {
		ok, err := o.Verify(rfcSecret, code, tt.at)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, ok, tt.name)
	}
}

func TestVerify_StepBoundaryIsDeterministic(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{})
	boundary := time.Unix(1_700_000_010, 0)
	require.Zero(t, boundary.Unix()%30)

	first, err := o.Code(rfcSecret, boundary)
	require.NoError(t, err)
	for range 5 {
		again, err := o.Code(rfcSecret, boundary)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	before, err := o.Code(rfcSecret, boundary.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, o.Step(boundary)-1, o.Step(boundary.Add(-time.Second)))

	ok, err := o.Verify(rfcSecret, before, boundary)
	require.NoError(t, err)
	assert.Equal(t, before == first, ok)
}

func TestVerify_RejectsWrongShape(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{})

	for _, candidate := range []string{"", "28708", "2870822", "abcdef"} {
		ok, err := o.Verify(rfcSecret, candidate, time.Unix(59, 0))
		require.NoError(t, err)
		assert.False(t, ok, candidate)
	}

	_, err := o.Verify("!!", "287082", time.Unix(59, 0))
	require.ErrorIs(t, err, otp.ErrMalformedSecret)
}

func TestQRCode(t *testing.T) {
	t.Parallel()

	o := otp.NewTOTP(otp.Config{})
	_, uri, err := o.GenerateSecret("DragonFruit", "acct")
	require.NoError(t, err)

	img, err := o.QRCode(uri, 200)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())

	_, err = o.QRCode(strings.Repeat("%", 3), 200)
	require.Error(t, err)
}
