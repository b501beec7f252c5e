package domain

import "time"

// FileStatus is the terminal classification of one file run.
// Values include FileStatusProcessed, FileStatusPartiallyProcessed, and
// FileStatusFailed.
type FileStatus string

const (
	FileStatusProcessed          FileStatus = "Processed"
	FileStatusPartiallyProcessed FileStatus = "Partially Processed"
	FileStatusFailed             FileStatus = "Failed"
)

// FileOutcome records how a single file's ingestion ended. Exactly one
// outcome exists per file per run, and it is owned by the controller
// processing that file.
type FileOutcome struct {
	File           string
	Status         FileStatus
	LinesAttempted int
	LinesSucceeded int
	Detail         string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// ClassifyOutcome derives the terminal status from the line counters:
// every attempted line loaded means Processed, some loaded means
// Partially Processed, none loaded (including files with no records)
// means Failed.
func ClassifyOutcome(attempted, succeeded int) FileStatus {
	switch {
	case attempted > 0 && succeeded == attempted:
		return FileStatusProcessed
	case succeeded > 0:
		return FileStatusPartiallyProcessed
	default:
		return FileStatusFailed
	}
}
