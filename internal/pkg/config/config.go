package config

import (
	"errors"
	"io"
	"strings"
	"time"
)

// ErrMissingKey is returned by RequireKeys.
var ErrMissingKey = errors.New("config: required key is missing")

// DurationConfig reads integer values scaled to a unit.
type DurationConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
}

// NumberConfig reads numeric values. Missing keys read as zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint8(key string) uint8
	GetUint32(key string) uint32
	GetFloat64(key string) float64
}

// Config is the read side of the application configuration.
//
// Getters never fail. Callers that cannot run without a value validate it once
// at startup with RequireKeys.
type Config interface {
	io.Closer
	DurationConfig
	NumberConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a standard base64 value. Invalid input reads as nil.
	GetBinary(key string) []byte

	// GetArray splits a comma separated value, dropping blanks.
	GetArray(key string) []string
}

// RequireKeys reports every key whose string value is blank.
func RequireKeys(cfg Config, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(cfg.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return &MissingKeysError{Keys: missing}
}

// MissingKeysError lists the keys RequireKeys could not find.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return ErrMissingKey.Error() + ": " + strings.Join(e.Keys, ", ")
}

func (e *MissingKeysError) Unwrap() error { return ErrMissingKey }
