package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingIdentity indicates a record without a usable identity field,
// so no document key can be derived for it.
var ErrMissingIdentity = errors.New("record has no usable identity field")

// Document is a Record ready for storage under its derived key. Loading
// the same document key twice overwrites rather than duplicates.
type Document struct {
	Key    string
	Record Record
}

// BuildDocument derives the storage key from the record's identity field
// and wraps the record for storage. It is a pure transformation: field
// values are carried verbatim as strings.
// Parameters:
//   - rec: parsed record.
//   - keyField: name of the identity field, normally the first schema name.
// Returns:
//   - *Document: document keyed by the identity value.
//   - error: ErrMissingIdentity if the field is absent or empty.
func BuildDocument(rec Record, keyField string) (*Document, error) {
	key, ok := rec.Get(keyField)
	if !ok || key == "" {
		return nil, fmt.Errorf("%w: %q is absent or empty", ErrMissingIdentity, keyField)
	}
	return &Document{Key: key, Record: rec}, nil
}

// StoredDocument is the relational projection of a Document: one row per
// document key with the record body serialized as an ordered JSON column.
type StoredDocument struct {
	DocKey    string    `gorm:"column:doc_key;type:text;primaryKey" json:"doc_key"`
	Body      Record    `gorm:"column:body;type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for StoredDocument.
func (StoredDocument) TableName() string {
	return "nrb_documents"
}
