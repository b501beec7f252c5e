package parser

import (
	"fmt"
	"strings"

	"github.com/telano/nrbload/internal/domain"
)

// Delimiter separates fields in an NRB line. The format defines no
// escaping, so a field can never contain a literal pipe.
const Delimiter = "|"

// Parser maps raw NRB lines onto a fixed schema. Parse is total:
// malformed input degrades to a smaller record, it never errors.
type Parser struct {
	schema domain.Schema
}

// New returns a Parser bound to schema. The schema is fixed for the
// parser's lifetime.
func New(schema domain.Schema) *Parser {
	return &Parser{schema: schema}
}

// Schema returns the schema this parser maps lines onto.
func (p *Parser) Schema() domain.Schema {
	return p.schema
}

// Parse splits line on the pipe delimiter and zips the trimmed tokens
// against the schema positionally. Empty tokens are omitted from the
// record, except the identity field at schema position 0, which is always
// carried so the document builder decides the line's fate explicitly.
// Tokens beyond the schema become overflow fields named field_1, field_2,
// ... by position past the schema end; an omitted empty overflow token
// leaves a gap in the numbering.
func (p *Parser) Parse(line string) domain.Record {
	var rec domain.Record
	line = strings.TrimSpace(line)
	if line == "" {
		return rec
	}
	for i, tok := range strings.Split(line, Delimiter) {
		tok = strings.TrimSpace(tok)
		if i < p.schema.Len() {
			if tok == "" && i != 0 {
				continue
			}
			rec.Fields = append(rec.Fields, domain.Field{Name: p.schema.Name(i), Value: tok})
			continue
		}
		if tok == "" {
			continue
		}
		rec.Overflow = append(rec.Overflow, domain.Field{
			Name:  fmt.Sprintf("field_%d", i-p.schema.Len()+1),
			Value: tok,
		})
	}
	return rec
}
