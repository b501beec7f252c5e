package domain

// DefaultFieldNames is the NRB field layout in wire order. The first name
// doubles as the identity field the document key is derived from.
var DefaultFieldNames = []string{
	"timestamp",
	"protocol",
	"host",
	"direction",
	"flag1",
	"flag2",
	"session_id",
	"auth_type",
	"device_type",
	"value1",
	"reference_id",
	"decryption_info",
	"message",
	"device_id",
}

// Schema is an immutable ordered list of field names. It is built once at
// startup and never mutated afterwards; the backing slice is copied on the
// way in and on the way out.
type Schema struct {
	names []string
}

// NewSchema creates a Schema from the given ordered field names.
// Parameters:
//   - names: field names in wire order; empty or nil means every token
//     becomes an overflow field.
// Returns:
//   - Schema: immutable schema value.
func NewSchema(names []string) Schema {
	copied := make([]string, len(names))
	copy(copied, names)
	return Schema{names: copied}
}

// DefaultSchema returns a Schema over DefaultFieldNames.
func DefaultSchema() Schema {
	return NewSchema(DefaultFieldNames)
}

// Len returns the number of named fields in the schema.
func (s Schema) Len() int {
	return len(s.names)
}

// Name returns the field name at position i.
func (s Schema) Name(i int) string {
	return s.names[i]
}

// Names returns a copy of the field names in schema order.
func (s Schema) Names() []string {
	copied := make([]string, len(s.names))
	copy(copied, s.names)
	return copied
}

// Identity returns the name of the field the document key is derived
// from, which is always the first schema position. Empty schemas have no
// identity field.
func (s Schema) Identity() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[0]
}
