package taxlot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object whose properties keep the order they
// were appended in. The zero value is an empty object.
type jsonObjectWriter struct {
	keys   []string
	values []any
}

// Append adds a property, value is encoded with json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	w.keys = append(w.keys, key)
	w.values = append(w.values, value)
	return w
}

// Optional adds a property unless value is the zero value of its type.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); v.IsValid() && !v.IsZero() {
		w.Append(key, value)
	}
	return w
}

func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range w.keys {
		value, err := json.Marshal(w.values[i])
		if err != nil {
			return nil, fmt.Errorf("cannot marshal %q: %w", key, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		name, _ := json.Marshal(key)
		b.Write(name)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
