package mfa

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RecoveryCodeCount is how many codes a user receives when TOTP is enabled.
const RecoveryCodeCount = 10

// Crockford base32 without I, L, O, U so codes survive being read aloud.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// RecoveryCode generates codes shaped XXXX-XXXX-XXXX.
type RecoveryCode struct{}

func NewRecoveryCode() *RecoveryCode {
	return &RecoveryCode{}
}

// Generate returns RecoveryCodeCount distinct codes.
func (rc *RecoveryCode) Generate() ([]string, error) {
	out := make([]string, 0, RecoveryCodeCount)
	seen := make(map[string]struct{}, RecoveryCodeCount)

	for len(out) < RecoveryCodeCount {
		code, err := randomCode()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

// NormalizeRecoveryCode uppercases input, drops separators and whitespace and
// restores the canonical dashes. It returns "" when the shape is wrong.
func NormalizeRecoveryCode(in string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(in) {
		switch {
		case r == '-' || r == ' ' || r == '\t':
			continue
		case strings.ContainsRune(alphabet, r):
			sb.WriteRune(r)
		default:
			return ""
		}
	}

	raw := sb.String()
	if len(raw) != 12 {
		return ""
	}
	return raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12]
}

func randomCode() (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, 0, 14)

	for i := range 12 {
		if i == 4 || i == 8 {
			buf = append(buf, '-')
		}
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf = append(buf, alphabet[n.Int64()])
	}

	return string(buf), nil
}
