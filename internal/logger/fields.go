package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard field names used across the loader.
const (
	// FieldRunID tags every log line belonging to one loader run.
	FieldRunID = "run_id"

	// FieldSource is the input source identifier.
	FieldSource = "source"

	// FieldFile is the NRB filename being processed.
	FieldFile = "file"

	// FieldLine is the 1-based line number within a file.
	FieldLine = "line"

	// FieldDocKey is the document key derived from a record.
	FieldDocKey = "doc_key"

	// FieldStatus is the file outcome status.
	FieldStatus = "status"

	// FieldCount is a generic count field.
	FieldCount = "count"

	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"
)
