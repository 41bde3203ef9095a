package jsonx

import (
	"encoding/json"
	"errors"
)

var errNilPayload = errors.New("jsonx: nil payload pointer")

// Decode fills dst from a bus payload: raw JSON ([]byte, string), a value
// of type T, or any JSON-marshalable shape (e.g. map[string]any).
func Decode[T any](src any, dst *T) error {
	switch v := src.(type) {
	case T:
		*dst = v
		return nil
	case *T:
		if v == nil {
			return errNilPayload
		}
		*dst = *v
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
