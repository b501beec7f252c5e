package domain

import "fmt"

// LineErrorKind classifies why a single line failed to load.
type LineErrorKind string

const (
	// LineErrorParseDegenerate marks a line that parsed to no fields at all.
	LineErrorParseDegenerate LineErrorKind = "parse_degenerate"
	// LineErrorMissingIdentity marks a record without a usable timestamp.
	LineErrorMissingIdentity LineErrorKind = "missing_identity"
	// LineErrorStore marks a failed upsert call.
	LineErrorStore LineErrorKind = "store_error"
)

// LineError is a per-line failure. The file it belongs to continues past
// it; only the counters and the audit trail record it.
type LineError struct {
	Kind LineErrorKind
	Line int
	Err  error
}

func (e *LineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line %d: %s", e.Line, e.Kind)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Kind, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
