package hash

import "strings"

// Password is the Hash used for account passwords.
//
// New hashes are always Argon2id. Verify dispatches on the algorithm tag so
// bcrypt hashes still verify. NeedsRehash tells the login path to upgrade them.
type Password struct {
	current *Argon2id
	legacy  *Bcrypt
}

// NewPassword returns a Password. legacy may be nil to reject bcrypt hashes.
func NewPassword(current *Argon2id, legacy *Bcrypt) *Password {
	return &Password{current: current, legacy: legacy}
}

func (p *Password) Hash(password string) (string, error) {
	return p.current.Hash(password)
}

func (p *Password) Verify(password, stored string) (bool, error) {
	switch {
	case strings.HasPrefix(stored, "$"+algArgon2id+"$"):
		return p.current.Verify(password, stored)
	case isBcrypt(stored) && p.legacy != nil:
		return p.legacy.Verify(password, stored)
	default:
		return false, ErrMalformedHash
	}
}

func (p *Password) NeedsRehash(stored string) bool {
	return p.current.NeedsRehash(stored)
}

func isBcrypt(stored string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}
