package otp

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultLabel  = "DragonFruit"
	DefaultPeriod = 30
	SecretSize    = 20
)

var (
	// ErrMalformedSecret is returned when a secret is not valid Base32.
	ErrMalformedSecret = errors.New("otp: malformed secret")

	// ErrEntropy is returned when the system random source fails.
	ErrEntropy = errors.New("otp: entropy failure")

	// ErrUnsupportedDigits is returned by ParseDigits for a count outside 6-8.
	ErrUnsupportedDigits = errors.New("otp: digit count must be between 6 and 8")
)

// ParseDigits turns a configured digit count into otp.Digits. Zero means six.
// Codes accepted at the HTTP boundary are 6 to 8 digits, so other counts are
// rejected rather than remapped.
func ParseDigits(n int) (otp.Digits, error) {
	switch {
	case n == 0:
		return otp.DigitsSix, nil
	case n >= 6 && n <= 8:
		return otp.Digits(n), nil
	default:
		return 0, fmt.Errorf("%w: got %d", ErrUnsupportedDigits, n)
	}
}

// Config holds the TOTP parameters shared by every account.
type Config struct {
	Label  string
	Period uint
	Digits otp.Digits
}

// TOTP generates secrets and computes and checks codes.
type TOTP struct {
	label  string
	period uint
	digits otp.Digits
}

// NewTOTP returns a TOTP. Unset fields fall back to label DragonFruit, a
// 30 second step and six digits. Configured digit counts go through
// ParseDigits first.
func NewTOTP(cfg Config) *TOTP {
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Digits == 0 {
		cfg.Digits = otp.DigitsSix
	}

	return &TOTP{label: cfg.Label, period: cfg.Period, digits: cfg.Digits}
}

func (o *TOTP) Label() string { return o.label }

// GenerateSecret draws a fresh secret for account and returns it with its
// provisioning URI, otpauth://totp/{label}:{account}?secret={secret}&issuer={label}.
func (o *TOTP) GenerateSecret(label, account string) (secret, uri string, err error) {
	raw := make([]byte, SecretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", "", errors.Join(ErrEntropy, err)
	}

	if label == "" {
		label = o.label
	}

	secret = base32.StdEncoding.EncodeToString(raw)
	uri = fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s", label, account, secret, label)

	return secret, uri, nil
}

// Step returns the counter of the time step containing at.
func (o *TOTP) Step(at time.Time) uint64 {
	return uint64(at.Unix()) / uint64(o.period)
}

// Code returns the code for the time step containing at.
func (o *TOTP) Code(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    o.period,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
		return "", ErrMalformedSecret
	}
	if err != nil {
		return "", err
	}

	return code, nil
}

// Verify reports whether candidate is the code of the time step containing at.
func (o *TOTP) Verify(secret, candidate string, at time.Time) (bool, error) {
	expected, err := o.Code(secret, at)
	if err != nil {
		return false, err
	}

	if len(candidate) != len(expected) {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1, nil
}

// QRCode renders uri as a size by size PNG.
func (o *TOTP) QRCode(uri string, size int) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, err
	}

	img, err := key.Image(size, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
