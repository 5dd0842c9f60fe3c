package ini

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldMap maps keys to values and remembers the order in which keys were
// first inserted. That order is what ReplaceListBlock writes, so a map built by
// Parse rewrites in file order and new keys land at the end.
type FieldMap struct {
	keys   []string
	values map[string]string
}

// NewFieldMap returns an empty map.
func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]string)}
}

// FieldMapOf builds a map from alternating key/value arguments. A trailing key
// without a value is ignored.
func FieldMapOf(kv ...string) *FieldMap {
	m := NewFieldMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set inserts or updates key. Updating keeps the key's original position.
func (m *FieldMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key.
func (m *FieldMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *FieldMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key. Missing keys are a no-op.
func (m *FieldMap) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *FieldMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every pair in insertion order.
func (m *FieldMap) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Clone returns an independent copy.
func (m *FieldMap) Clone() *FieldMap {
	out := NewFieldMap()
	m.Each(out.Set)
	return out
}

// Map returns the pairs as a plain Go map.
func (m *FieldMap) Map() map[string]string {
	out := make(map[string]string, m.Len())
	m.Each(func(k, v string) { out[k] = v })
	return out
}

// Equal reports whether both maps hold the same pairs, ignoring order.
func (m *FieldMap) Equal(other *FieldMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, k := range m.Keys() {
		a, _ := m.Get(k)
		b, ok := other.Get(k)
		if !ok || a != b {
			return false
		}
	}
	return true
}

// MarshalJSON writes the pairs as a JSON object in insertion order.
func (m *FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object of strings, keeping document order.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("field map: expected object, got %v", tok)
	}
	out := NewFieldMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("field map: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field map: value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	*m = *out
	return nil
}
