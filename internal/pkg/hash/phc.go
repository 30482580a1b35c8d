package hash

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// phc is a parsed `$alg$v=..$k=v,...$salt$digest` string.
type phc struct {
	alg     string
	version int
	params  map[string]uint64
	salt    []byte
	digest  []byte
}

func (p phc) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		p.alg,
		p.version,
		p.params["m"],
		p.params["t"],
		p.params["p"],
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.digest),
	)
}

func parsePHC(s string) (phc, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phc{}, ErrMalformedHash
	}

	out := phc{alg: parts[1], params: make(map[string]uint64, 3)}

	v, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return phc{}, ErrMalformedHash
	}
	version, err := strconv.Atoi(v)
	if err != nil {
		return phc{}, ErrMalformedHash
	}
	out.version = version

	for _, kv := range strings.Split(parts[3], ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return phc{}, ErrMalformedHash
		}
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return phc{}, ErrMalformedHash
		}
		out.params[key] = n
	}

	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return phc{}, ErrMalformedHash
	}
	if out.digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.digest) == 0 {
		return phc{}, ErrMalformedHash
	}

	return out, nil
}
