package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"

	"golang.org/x/crypto/argon2"
)

const algArgon2id = "argon2id"

// Argon2Params are the Argon2id cost parameters. Zero fields take the defaults.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns m=19456 KiB, t=2, p=1 with a 16 byte salt and 32 byte output.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKiB:   19 * 1024,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (p Argon2Params) withDefaults() Argon2Params {
	def := DefaultArgon2Params()
	if p.MemoryKiB == 0 {
		p.MemoryKiB = def.MemoryKiB
	}
	if p.Iterations == 0 {
		p.Iterations = def.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = def.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = def.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = def.KeyLength
	}
	return p
}

// Argon2id hashes passwords and derives keys with Argon2id.
type Argon2id struct {
	params Argon2Params
}

// NewArgon2id returns an Argon2id using params.
func NewArgon2id(params Argon2Params) *Argon2id {
	return &Argon2id{params: params.withDefaults()}
}

// Hash salts password with fresh random bytes and returns the PHC string.
func (a *Argon2id) Hash(password string) (string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hash: generate salt: %w", err)
	}

	return a.encode(password, salt), nil
}

// Verify recomputes password with the parameters embedded in stored.
func (a *Argon2id) Verify(password, stored string) (bool, error) {
	p, err := parsePHC(stored)
	if err != nil {
		return false, err
	}
	if p.alg != algArgon2id || p.version != argon2.Version {
		return false, ErrMalformedHash
	}

	m, t, par := p.params["m"], p.params["t"], p.params["p"]
	if m == 0 || t == 0 || par == 0 || par > math.MaxUint8 {
		return false, ErrMalformedHash
	}

	computed := argon2.IDKey([]byte(password), p.salt, uint32(t), uint32(m), uint8(par), uint32(len(p.digest)))

	return subtle.ConstantTimeCompare(p.digest, computed) == 1, nil
}

// DeriveKey returns the raw Argon2id digest of material under the raw base64
// salt. The same material and salt always yield the same bytes.
func (a *Argon2id) DeriveKey(material, salt string) ([]byte, error) {
	raw, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil || len(raw) == 0 {
		return nil, ErrMalformedSalt
	}

	return a.digest(material, raw), nil
}

// NeedsRehash reports whether stored was produced with other parameters or another algorithm.
func (a *Argon2id) NeedsRehash(stored string) bool {
	p, err := parsePHC(stored)
	if err != nil || p.alg != algArgon2id || p.version != argon2.Version {
		return true
	}

	return p.params["m"] != uint64(a.params.MemoryKiB) ||
		p.params["t"] != uint64(a.params.Iterations) ||
		p.params["p"] != uint64(a.params.Parallelism) ||
		len(p.digest) != int(a.params.KeyLength)
}

func (a *Argon2id) digest(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, a.params.Iterations, a.params.MemoryKiB, a.params.Parallelism, a.params.KeyLength)
}

func (a *Argon2id) encode(secret string, salt []byte) string {
	return phc{
		alg:     algArgon2id,
		version: argon2.Version,
		params: map[string]uint64{
			"m": uint64(a.params.MemoryKiB),
			"t": uint64(a.params.Iterations),
			"p": uint64(a.params.Parallelism),
		},
		salt:   salt,
		digest: a.digest(secret, salt),
	}.String()
}
