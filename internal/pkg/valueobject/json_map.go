// Package valueobject holds small value types shared by the persistence layer.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

var ErrScanUnsupported = errors.New("valueobject: cannot scan value into JSONMap")

// JSONMap is a JSON object column, used for audit event metadata.
type JSONMap map[string]any

// Value stores the map as JSON. A nil map is stored as {}.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(j))
}

// Scan accepts JSON text or bytes, or a map already decoded by the driver.
func (j *JSONMap) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case map[string]any:
		*j = JSONMap(v)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrScanUnsupported
	}

	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*j = out
	return nil
}

// String returns the string at key, or "".
func (j JSONMap) String(key string) string {
	s, _ := j[key].(string)
	return s
}

// With returns a copy of j with key set to value.
func (j JSONMap) With(key string, value any) JSONMap {
	out := make(JSONMap, len(j)+1)
	for k, v := range j {
		out[k] = v
	}
	out[key] = value
	return out
}
