package vaultcrypto_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/hash"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/vaultcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = uuid.MustParse("0190b7a2-7c1d-7000-8000-00000000000a")
	bob   = uuid.MustParse("0190b7a2-7c1d-7000-8000-00000000000b")
)

func newService(t *testing.T, mode vaultcrypto.Mode, secret *string) *vaultcrypto.Service {
	t.Helper()

	svc, err := vaultcrypto.New(vaultcrypto.Config{
		Mode:    mode,
		Secret:  func() string { return *secret },
		Deriver: hash.NewArgon2id(hash.Argon2Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}),
	})
	require.NoError(t, err)
	return svc
}

func modes() []vaultcrypto.Mode {
	return []vaultcrypto.Mode{vaultcrypto.ModeXOR, vaultcrypto.ModeAESGCM}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	plaintexts := []string{
		"hunter22",
		"",
		"çå†∂ 🐉 fruit",
		strings.Repeat("long-password-", 40),
		"with:colons:inside",
	}

	for _, mode := range modes() {
		secret := "process-secret"
		svc := newService(t, mode, &secret)

		for _, pt := range plaintexts {
			enc, err := svc.Encrypt(pt, alice)
			require.NoError(t, err)

			salt, payload, ok := strings.Cut(enc, ":")
			require.True(t, ok)
			assert.Len(t, salt, 22)
			assert.NotContains(t, payload, ":")
			if pt != "" {
				assert.NotContains(t, enc, pt)
			}

			got, err := svc.Decrypt(enc, alice)
			require.NoError(t, err, "mode=%s", mode)
			assert.Equal(t, pt, got)
		}
	}
}

func TestEncrypt_FreshSaltEachCall(t *testing.T) {
	t.Parallel()

	secret := "process-secret"
	svc := newService(t, vaultcrypto.ModeXOR, &secret)

	a, err := svc.Encrypt("hunter22", alice)
	require.NoError(t, err)
	b, err := svc.Encrypt("hunter22", alice)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

// requireNotRecovered fails when svc hands back plaintext for enc. XOR has no
// integrity check, so it may return unrelated bytes instead of an error.
func requireNotRecovered(t *testing.T, svc *vaultcrypto.Service, enc string, owner uuid.UUID, plaintext string) {
	t.Helper()

	got, err := svc.Decrypt(enc, owner)
	if svc.Mode() == vaultcrypto.ModeAESGCM {
		require.ErrorIs(t, err, vaultcrypto.ErrDecrypt)
		return
	}
	if err != nil {
		require.ErrorIs(t, err, vaultcrypto.ErrNotText)
		return
	}
	assert.NotEqual(t, plaintext, got)
}

var crossPlaintexts = []string{
	"hunter22",
	"CorrectHorseBatteryStaple!2024",
	strings.Repeat("x", 80),
}

func TestDecrypt_OtherOwner(t *testing.T) {
	t.Parallel()

	for _, mode := range modes() {
		for _, pt := range crossPlaintexts {
			t.Run(string(mode)+"/"+pt[:8], func(t *testing.T) {
				t.Parallel()

				secret := "process-secret"
				svc := newService(t, mode, &secret)

				enc, err := svc.Encrypt(pt, alice)
				require.NoError(t, err)

				requireNotRecovered(t, svc, enc, bob, pt)
			})
		}
	}
}

func TestDecrypt_OtherProcessSecret(t *testing.T) {
	t.Parallel()

	for _, mode := range modes() {
		for _, pt := range crossPlaintexts {
			t.Run(string(mode)+"/"+pt[:8], func(t *testing.T) {
				t.Parallel()

				secret := "real-process-secret"
				svc := newService(t, mode, &secret)

				enc, err := svc.Encrypt(pt, alice)
				require.NoError(t, err)

				guess := "attacker-guess"
				attacker := newService(t, mode, &guess)
				requireNotRecovered(t, attacker, enc, alice, pt)
				requireNotRecovered(t, attacker, enc, bob, pt)

				secret = ""
				_, err = svc.Decrypt(enc, alice)
				require.ErrorIs(t, err, vaultcrypto.ErrMissingSecret)
			})
		}
	}
}

func TestXOR_KeystreamIsNotPublic(t *testing.T) {
	t.Parallel()

	secret := "process-secret"
	svc := newService(t, vaultcrypto.ModeXOR, &secret)

	pt := "CorrectHorseBatteryStaple!2024"
	enc, err := svc.Encrypt(pt, alice)
	require.NoError(t, err)

	salt, payload, _ := strings.Cut(enc, ":")
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)

	// Everything an attacker can read without the process secret.
	public := []byte("$argon2id$v=19$m=64,t=1,p=1$" + salt + "$")
	guess := make([]byte, len(raw))
	for i := range raw {
		guess[i] = raw[i] ^ public[i%len(public)]
	}
	assert.NotEqual(t, pt, string(guess))
}

func TestDecrypt_AfterModeSwitch(t *testing.T) {
	t.Parallel()

	secret := "process-secret"
	xor := newService(t, vaultcrypto.ModeXOR, &secret)
	gcm := newService(t, vaultcrypto.ModeAESGCM, &secret)

	for _, pt := range crossPlaintexts {
		enc, err := gcm.Encrypt(pt, alice)
		require.NoError(t, err)
		requireNotRecovered(t, xor, enc, alice, pt)

		enc, err = xor.Encrypt(pt, alice)
		require.NoError(t, err)
		_, err = gcm.Decrypt(enc, alice)
		require.Error(t, err)
		if len(pt) >= 28 {
			require.ErrorIs(t, err, vaultcrypto.ErrDecrypt)
		} else {
			require.ErrorIs(t, err, vaultcrypto.ErrMalformedSecret)
		}
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	t.Parallel()

	secret := "process-secret"

	tests := []string{
		"",
		"no-separator-at-all",
		"c2FsdHNhbHRzYWx0c2FsdA:aGVsbG8=:extra",
		":aGVsbG8=",
		"c2FsdHNhbHRzYWx0c2FsdA:!!!not base64!!!",
		"!!!:aGVsbG8=",
	}

	for _, mode := range modes() {
		svc := newService(t, mode, &secret)
		for _, in := range tests {
			_, err := svc.Decrypt(in, alice)
			require.ErrorIs(t, err, vaultcrypto.ErrMalformedSecret, "mode=%s input=%q", mode, in)
		}
	}
}

func TestXOR_IsMalleable(t *testing.T) {
	t.Parallel()

	secret := "process-secret"
	svc := newService(t, vaultcrypto.ModeXOR, &secret)

	enc, err := svc.Encrypt("aaaa", alice)
	require.NoError(t, err)

	salt, payload, _ := strings.Cut(enc, ":")
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	raw[0] ^= 'a' ^ 'b'

	got, err := svc.Decrypt(salt+":"+base64.StdEncoding.EncodeToString(raw), alice)
	require.NoError(t, err)
	assert.Equal(t, "baaa", got)
}

func TestAESGCM_DetectsTampering(t *testing.T) {
	t.Parallel()

	secret := "process-secret"
	svc := newService(t, vaultcrypto.ModeAESGCM, &secret)

	enc, err := svc.Encrypt("aaaa", alice)
	require.NoError(t, err)

	salt, payload, _ := strings.Cut(enc, ":")
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = svc.Decrypt(salt+":"+base64.StdEncoding.EncodeToString(raw), alice)
	require.ErrorIs(t, err, vaultcrypto.ErrDecrypt)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	deriver := hash.NewArgon2id(hash.Argon2Params{})

	_, err := vaultcrypto.New(vaultcrypto.Config{Mode: "rot13", Secret: func() string { return "x" }, Deriver: deriver})
	require.ErrorIs(t, err, vaultcrypto.ErrUnknownMode)

	_, err = vaultcrypto.New(vaultcrypto.Config{Deriver: deriver})
	require.ErrorIs(t, err, vaultcrypto.ErrMissingSecret)

	svc, err := vaultcrypto.New(vaultcrypto.Config{Secret: func() string { return "x" }, Deriver: deriver})
	require.NoError(t, err)
	assert.Equal(t, vaultcrypto.ModeXOR, svc.Mode())
}
