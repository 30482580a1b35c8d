package jwt_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/clock"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	subject = uuid.MustParse("0190b7a2-7c1d-7000-8000-000000000001")
	key     = []byte("test-signing-key-for-dragonfruit")
	issued  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

func newService(t *testing.T, clk *clock.Fixed, mutate ...func(*jwt.Config)) *jwt.HMAC {
	t.Helper()

	cfg := jwt.Config{Key: jwt.StaticKey(key), Clock: clk}
	for _, m := range mutate {
		m(&cfg)
	}

	svc, err := jwt.NewHMAC(cfg)
	require.NoError(t, err)
	return svc
}

func TestHMAC_Lifecycle(t *testing.T) {
	t.Parallel()

	clk := clock.NewFixed(issued)
	svc := newService(t, clk)

	token, err := svc.Issue(subject)
	require.NoError(t, err)

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, subject, got)

	clk.Set(issued.Add(jwt.DefaultTTL - time.Second))
	got, err = svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, subject, got)

	clk.Set(issued.Add(jwt.DefaultTTL))
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	clk.Set(issued.Add(48 * time.Hour))
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestHMAC_Claims(t *testing.T) {
	t.Parallel()

	svc := newService(t, clock.NewFixed(issued))

	token, err := svc.Issue(subject)
	require.NoError(t, err)

	var claims libJWT.RegisteredClaims
	parsed, _, err := libJWT.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)

	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, subject.String(), claims.Subject)
	assert.Equal(t, jwt.DefaultIssuer, claims.Issuer)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestHMAC_TamperedSignature(t *testing.T) {
	t.Parallel()

	svc := newService(t, clock.NewFixed(issued))

	token, err := svc.Issue(subject)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[5] == 'A' {
		sig[5] = 'B'
	} else {
		sig[5] = 'A'
	}
	parts[2] = string(sig)

	_, err = svc.Validate(strings.Join(parts, "."))
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
	require.NotErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestHMAC_InvalidTokens(t *testing.T) {
	t.Parallel()

	clk := clock.NewFixed(issued)
	svc := newService(t, clk)

	sign := func(method libJWT.SigningMethod, claims libJWT.RegisteredClaims, k any) string {
		s, err := libJWT.NewWithClaims(method, claims).SignedString(k)
		require.NoError(t, err)
		return s
	}
	valid := libJWT.RegisteredClaims{
		Subject:   subject.String(),
		Issuer:    jwt.DefaultIssuer,
		IssuedAt:  libJWT.NewNumericDate(issued),
		ExpiresAt: libJWT.NewNumericDate(issued.Add(time.Hour)),
	}

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	futureIat := valid
	futureIat.IssuedAt = libJWT.NewNumericDate(issued.Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
		{name: "other key", token: sign(libJWT.SigningMethodHS256, valid, []byte("another-key"))},
		{name: "other algorithm", token: sign(libJWT.SigningMethodHS512, valid, key)},
		{name: "wrong issuer", token: sign(libJWT.SigningMethodHS256, wrongIssuer, key)},
		{name: "missing exp", token: sign(libJWT.SigningMethodHS256, noExpiry, key)},
		{name: "issued in future", token: sign(libJWT.SigningMethodHS256, futureIat, key)},
		{name: "alg none", token: sign(libJWT.SigningMethodNone, valid, libJWT.UnsafeAllowNoneSignatureType)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			require.ErrorIs(t, err, jwt.ErrInvalidToken)
		})
	}
}

func TestHMAC_CorruptSubjectIsInternal(t *testing.T) {
	t.Parallel()

	svc := newService(t, clock.NewFixed(issued))

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, libJWT.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    jwt.DefaultIssuer,
		IssuedAt:  libJWT.NewNumericDate(issued),
		ExpiresAt: libJWT.NewNumericDate(issued.Add(time.Hour)),
	}).SignedString(key)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, jwt.ErrInvalidSubject)
}

func TestHMAC_KeyReadPerCall(t *testing.T) {
	t.Parallel()

	var current atomic.Value
	current.Store([]byte("first-key"))

	svc := newService(t, clock.NewFixed(issued), func(c *jwt.Config) {
		c.Key = func() []byte { return current.Load().([]byte) }
	})

	before, err := svc.Issue(subject)
	require.NoError(t, err)

	current.Store([]byte("rotated-key"))

	_, err = svc.Validate(before)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)

	after, err := svc.Issue(subject)
	require.NoError(t, err)
	got, err := svc.Validate(after)
	require.NoError(t, err)
	assert.Equal(t, subject, got)

	current.Store([]byte{})
	_, err = svc.Issue(subject)
	require.ErrorIs(t, err, jwt.ErrMissingKey)
	_, err = svc.Validate(after)
	require.ErrorIs(t, err, jwt.ErrMissingKey)
}

func TestNewHMAC_Options(t *testing.T) {
	t.Parallel()

	_, err := jwt.NewHMAC(jwt.Config{})
	require.ErrorIs(t, err, jwt.ErrMissingKey)

	_, err = jwt.NewHMAC(jwt.Config{Key: jwt.StaticKey(key), Algorithm: "RS256"})
	require.ErrorIs(t, err, jwt.ErrUnsupportedAlgorithm)

	clk := clock.NewFixed(issued)
	svc := newService(t, clk, func(c *jwt.Config) {
		c.Algorithm = "HS512"
		c.Issuer = "custom"
		c.TTL = time.Minute
	})

	token, err := svc.Issue(subject)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	_, err = svc.Validate(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestContextAuth(t *testing.T) {
	t.Parallel()

	_, ok := jwt.GetAuth(context.Background())
	assert.False(t, ok)

	got, ok := jwt.GetAuth(jwt.SetAuth(context.Background(), subject))
	assert.True(t, ok)
	assert.Equal(t, subject, got)
}
