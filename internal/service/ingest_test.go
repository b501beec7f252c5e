package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/telano/nrbload/internal/audit"
	"github.com/telano/nrbload/internal/domain"
	"github.com/telano/nrbload/internal/parser"
	"github.com/telano/nrbload/internal/source"
)

var testSchema = domain.NewSchema([]string{"timestamp", "protocol", "host", "direction", "flag1", "flag2"})

// memStore is an in-memory DocumentStore with upsert-by-key semantics.
type memStore struct {
	docs     map[string]string
	upserts  int
	failKeys map[string]error
	failAll  error
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]string)}
}

func (m *memStore) Upsert(ctx context.Context, doc *domain.Document) error {
	m.upserts++
	if m.failAll != nil {
		return m.failAll
	}
	if err := m.failKeys[doc.Key]; err != nil {
		return err
	}
	b, err := json.Marshal(doc.Record)
	if err != nil {
		return err
	}
	m.docs[doc.Key] = string(b)
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeFile struct {
	name    string
	content string
	openErr error
	readErr error
}

func (f *fakeFile) Name() string { return f.name }

func (f *fakeFile) Open(ctx context.Context) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.readErr != nil {
		return io.NopCloser(&failingReader{err: f.readErr}), nil
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read(p []byte) (int, error) { return 0, r.err }

type fakeSource struct {
	files []source.File
}

func (s *fakeSource) ID() string { return "fake:test" }

func (s *fakeSource) Files(ctx context.Context) ([]source.File, error) { return s.files, nil }

func newTestService(st *memStore, auditLog *audit.Log) *IngestService {
	return NewIngestService(parser.New(testSchema), st, auditLog, nil)
}

func TestIngestFileProcessed(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, nil)

	f := &fakeFile{
		name: "day1.nrb",
		content: "1749216786471|HTTPS|host-a|IN|0|0\n" +
			"1749216786472|HTTP|host-b|OUT|1|0\n",
	}
	outcome := svc.IngestFile(context.Background(), f)

	if outcome.Status != domain.FileStatusProcessed {
		t.Fatalf("status: got %q, want %q (%s)", outcome.Status, domain.FileStatusProcessed, outcome.Detail)
	}
	if outcome.LinesAttempted != 2 || outcome.LinesSucceeded != 2 {
		t.Errorf("counts: attempted=%d succeeded=%d, want 2/2", outcome.LinesAttempted, outcome.LinesSucceeded)
	}
	if len(st.docs) != 2 {
		t.Errorf("store: got %d docs, want 2", len(st.docs))
	}
	if _, ok := st.docs["1749216786471"]; !ok {
		t.Error("document 1749216786471 missing from store")
	}
	if outcome.Detail != "Successfully processed 2 records" {
		t.Errorf("detail: got %q", outcome.Detail)
	}
}

func TestIngestFilePartiallyProcessed(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, nil)

	// Line 2 has no timestamp, line 4 is all delimiters.
	f := &fakeFile{
		name: "day2.nrb",
		content: "1749216786471|HTTPS|host-a|IN|0|0\n" +
			"|HTTPS|host-b|OUT|0|0\n" +
			"1749216786473|HTTP|host-c|IN|0|0\n" +
			"|||\n",
	}
	outcome := svc.IngestFile(context.Background(), f)

	if outcome.Status != domain.FileStatusPartiallyProcessed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusPartiallyProcessed)
	}
	if outcome.LinesAttempted != 4 || outcome.LinesSucceeded != 2 {
		t.Errorf("counts: attempted=%d succeeded=%d, want 4/2", outcome.LinesAttempted, outcome.LinesSucceeded)
	}
	if outcome.Detail != "Processed 2 records, 2 errors" {
		t.Errorf("detail: got %q", outcome.Detail)
	}
	if len(st.docs) != 2 {
		t.Errorf("store: got %d docs, want 2", len(st.docs))
	}
}

func TestIngestFileBlankLinesNotCounted(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, nil)

	f := &fakeFile{
		name:    "day3.nrb",
		content: "\n1749216786471|HTTPS|host-a|IN|0|0\n   \n\n1749216786472|HTTP|host-b|OUT|0|0\n",
	}
	outcome := svc.IngestFile(context.Background(), f)

	if outcome.Status != domain.FileStatusProcessed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusProcessed)
	}
	if outcome.LinesAttempted != 2 {
		t.Errorf("blank lines should not count as attempts, got %d", outcome.LinesAttempted)
	}
}

func TestIngestFileEmptyFileFails(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	outcome := svc.IngestFile(context.Background(), &fakeFile{name: "empty.nrb", content: ""})
	if outcome.Status != domain.FileStatusFailed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusFailed)
	}
	if outcome.Detail != "No records found" {
		t.Errorf("detail: got %q", outcome.Detail)
	}
}

func TestIngestFileOpenErrorFails(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	outcome := svc.IngestFile(context.Background(), &fakeFile{
		name:    "gone.nrb",
		openErr: errors.New("no such file"),
	})
	if outcome.Status != domain.FileStatusFailed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusFailed)
	}
	if !strings.Contains(outcome.Detail, "no such file") {
		t.Errorf("detail should carry the open error, got %q", outcome.Detail)
	}
}

func TestIngestFileReadErrorAbortsFile(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	outcome := svc.IngestFile(context.Background(), &fakeFile{
		name:    "truncated.nrb",
		readErr: errors.New("device error"),
	})
	if outcome.Status != domain.FileStatusFailed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusFailed)
	}
	if !strings.Contains(outcome.Detail, "device error") {
		t.Errorf("detail should carry the read error, got %q", outcome.Detail)
	}
}

func TestIngestFileStoreErrorIsLineLevel(t *testing.T) {
	st := newMemStore()
	st.failKeys = map[string]error{"1749216786472": errors.New("connection reset")}
	svc := newTestService(st, nil)

	f := &fakeFile{
		name: "day4.nrb",
		content: "1749216786471|HTTPS|host-a|IN|0|0\n" +
			"1749216786472|HTTP|host-b|OUT|0|0\n" +
			"1749216786473|HTTP|host-c|IN|0|0\n",
	}
	outcome := svc.IngestFile(context.Background(), f)

	// The file continues past the failed upsert.
	if outcome.Status != domain.FileStatusPartiallyProcessed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusPartiallyProcessed)
	}
	if outcome.LinesSucceeded != 2 {
		t.Errorf("succeeded: got %d, want 2", outcome.LinesSucceeded)
	}
}

func TestIngestFileAllStoreErrorsFail(t *testing.T) {
	st := newMemStore()
	st.failAll = errors.New("store down")
	svc := newTestService(st, nil)

	f := &fakeFile{name: "day5.nrb", content: "1749216786471|HTTPS|host-a|IN|0|0\n"}
	outcome := svc.IngestFile(context.Background(), f)

	if outcome.Status != domain.FileStatusFailed {
		t.Fatalf("status: got %q, want %q", outcome.Status, domain.FileStatusFailed)
	}
	if outcome.Detail != "All 1 records failed" {
		t.Errorf("detail: got %q", outcome.Detail)
	}
}

func TestIngestFileIdempotent(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, nil)

	f := &fakeFile{
		name: "day6.nrb",
		content: "1749216786471|HTTPS|host-a|IN|0|0\n" +
			"1749216786472|HTTP|host-b|OUT|0|0\n",
	}

	first := svc.IngestFile(context.Background(), f)
	second := svc.IngestFile(context.Background(), f)

	if first.Status != domain.FileStatusProcessed || second.Status != domain.FileStatusProcessed {
		t.Fatalf("statuses: %q / %q", first.Status, second.Status)
	}
	if st.upserts != 4 {
		t.Errorf("upsert calls: got %d, want 4", st.upserts)
	}
	// Second load overwrites, it does not duplicate.
	if len(st.docs) != 2 {
		t.Errorf("store: got %d docs after reload, want 2", len(st.docs))
	}
}

func TestRunAggregatesOutcomesAndWritesAudit(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "processing_log.csv")
	auditLog, err := audit.Open(auditPath)
	if err != nil {
		t.Fatalf("open audit: %v", err)
	}

	st := newMemStore()
	svc := newTestService(st, auditLog)

	src := &fakeSource{files: []source.File{
		&fakeFile{name: "a.nrb", content: "1749216786471|HTTPS|host-a|IN|0|0\n"},
		&fakeFile{name: "b.nrb", content: "1749216786472|HTTP|host-b|OUT|0|0\n|no|timestamp\n"},
		&fakeFile{name: "c.nrb", content: ""},
	}}

	stats, err := svc.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	auditLog.Close()

	if stats.FilesTotal != 3 || stats.FilesProcessed != 1 || stats.FilesPartial != 1 || stats.FilesFailed != 1 {
		t.Errorf("stats: %+v", stats)
	}
	if !stats.Failed() {
		t.Error("run with a failed file should report failure")
	}
	if stats.LinesAttempted != 3 || stats.LinesSucceeded != 2 {
		t.Errorf("line totals: attempted=%d succeeded=%d", stats.LinesAttempted, stats.LinesSucceeded)
	}

	f, err := os.Open(auditPath)
	if err != nil {
		t.Fatalf("open audit csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read audit csv: %v", err)
	}

	// Header, one line-failure row for b.nrb, and one outcome row per file.
	if len(rows) != 5 {
		t.Fatalf("audit rows: got %d (%v), want 5", len(rows), rows)
	}
	outcomes := map[string]string{}
	for _, row := range rows[1:] {
		if len(row) != 4 {
			t.Fatalf("audit row width: %v", row)
		}
		outcomes[row[1]] = row[2]
	}
	if outcomes["a.nrb"] != string(domain.FileStatusProcessed) {
		t.Errorf("a.nrb status: %q", outcomes["a.nrb"])
	}
	if outcomes["b.nrb"] != string(domain.FileStatusPartiallyProcessed) {
		t.Errorf("b.nrb status: %q", outcomes["b.nrb"])
	}
	if outcomes["c.nrb"] != string(domain.FileStatusFailed) {
		t.Errorf("c.nrb status: %q", outcomes["c.nrb"])
	}
}

func TestRunContinuesPastFailedFile(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, nil)

	src := &fakeSource{files: []source.File{
		&fakeFile{name: "bad.nrb", openErr: errors.New("permission denied")},
		&fakeFile{name: "good.nrb", content: "1749216786471|HTTPS|host-a|IN|0|0\n"},
	}}

	stats, err := svc.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.FilesFailed != 1 || stats.FilesProcessed != 1 {
		t.Errorf("stats: %+v", stats)
	}
	if len(st.docs) != 1 {
		t.Errorf("store: got %d docs, want 1", len(st.docs))
	}
}
