package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is one named value parsed from an NRB line.
type Field struct {
	Name  string
	Value string
}

// Record holds the parsed fields of one NRB line. Schema fields and
// overflow fields are kept as separate ordered lists so serialized output
// reproduces insertion order: schema fields first in schema order, then
// overflow fields in appearance order. Values are strings throughout; the
// loader performs no type coercion.
type Record struct {
	Fields   []Field
	Overflow []Field
}

// Get returns the value for name and whether it is present, checking
// schema fields first and overflow fields second.
func (r *Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	for _, f := range r.Overflow {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Len returns the total number of fields, overflow included.
func (r *Record) Len() int {
	return len(r.Fields) + len(r.Overflow)
}

// MarshalJSON renders the record as a JSON object with keys in insertion
// order. The stdlib map encoding would sort keys, which loses the wire
// order of the line.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false
	writeField := func(f Field) error {
		if wrote {
			buf.WriteByte(',')
		}
		wrote = true
		name, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}
	for _, f := range r.Fields {
		if err := writeField(f); err != nil {
			return nil, err
		}
	}
	for _, f := range r.Overflow {
		if err := writeField(f); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the ordered field list from a JSON object. All
// keys land in Fields; the schema/overflow split is not recoverable from
// serialized form and is not needed after storage.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}
	r.Fields = nil
	r.Overflow = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: non-string key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		value, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("record: field %q has non-string value %v", key, valTok)
		}
		r.Fields = append(r.Fields, Field{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Value implements driver.Valuer so a Record can be stored as a JSON text
// column.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded object preserving field order.
//   - error: non-nil if marshaling fails.
func (r Record) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (r *Record) Scan(value interface{}) error {
	if value == nil {
		*r = Record{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan Record")
		}
		b = []byte(str)
	}
	return json.Unmarshal(b, r)
}
