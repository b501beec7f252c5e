package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/telano/nrbload/internal/domain"
)

// header is the fixed column layout of the processing log.
var header = []string{"Timestamp", "NRB Log Filename", "Status", "Error/Exception"}

// Log is an append-only CSV trail of per-file outcomes, one row per file
// per run. A Log owns the file handle for the duration of a run.
type Log struct {
	f *os.File
	w *csv.Writer
}

// Open opens or creates the audit log at path. The header row is written
// only when the file is new or empty.
// Parameters:
//   - path: CSV file path.
// Returns:
//   - *Log: open audit log ready for rows.
//   - error: non-nil if the file cannot be opened or the header written.
func Open(path string) (*Log, error) {
	info, err := os.Stat(path)
	fresh := errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	l := &Log{f: f, w: csv.NewWriter(f)}
	if fresh {
		if err := l.write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write audit header: %w", err)
		}
	}
	return l, nil
}

func (l *Log) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

// Record appends one row: run timestamp, source filename, status, and
// error detail (empty when none). Rows are flushed immediately so a crash
// later in the run cannot lose them.
func (l *Log) Record(filename string, status domain.FileStatus, detail string) error {
	ts := time.Now().Format("2006-01-02 15:04:05")
	if err := l.write([]string{ts, filename, string(status), detail}); err != nil {
		return fmt.Errorf("failed to write audit row: %w", err)
	}
	return nil
}

// RecordOutcome appends the finalized row for a file outcome.
func (l *Log) RecordOutcome(o *domain.FileOutcome) error {
	return l.Record(o.File, o.Status, o.Detail)
}

// Close closes the underlying file.
func (l *Log) Close() error {
	return l.f.Close()
}
