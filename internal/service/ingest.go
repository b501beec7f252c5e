package service

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/telano/nrbload/internal/audit"
	"github.com/telano/nrbload/internal/domain"
	"github.com/telano/nrbload/internal/logger"
	"github.com/telano/nrbload/internal/parser"
	"github.com/telano/nrbload/internal/source"
	"github.com/telano/nrbload/internal/store"
)

// maxLineBytes bounds a single NRB line; lines are log-sized, not blobs.
const maxLineBytes = 1 << 20

// IngestService runs the NRB load pipeline: parse each line, build the
// document, upsert it into the store, and classify the file's outcome.
// Files are processed one at a time, lines in file order.
type IngestService struct {
	parser *parser.Parser
	store  store.DocumentStore
	audit  *audit.Log
	logger *logger.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(p *parser.Parser, st store.DocumentStore, auditLog *audit.Log, log *logger.Logger) *IngestService {
	if log == nil {
		log = logger.Default()
	}
	return &IngestService{
		parser: p,
		store:  st,
		audit:  auditLog,
		logger: log,
	}
}

// RunStats aggregates a whole batch run.
type RunStats struct {
	FilesTotal     int
	FilesProcessed int
	FilesPartial   int
	FilesFailed    int
	LinesAttempted int
	LinesSucceeded int
	StartTime      time.Time
	EndTime        time.Time
}

// Failed reports whether any file in the run ended Failed.
func (s *RunStats) Failed() bool {
	return s.FilesFailed > 0
}

// Run ingests every file the source lists, sequentially in listing order,
// and records one audit row per file. A listing failure is the only error
// returned; per-file failures are absorbed into the stats so a bad file
// never takes down the batch.
func (s *IngestService) Run(ctx context.Context, src source.Source) (*RunStats, error) {
	stats := &RunStats{StartTime: time.Now()}

	files, err := src.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source %s: %w", src.ID(), err)
	}

	s.logger.WithFields(logger.Fields{
		logger.FieldSource: src.ID(),
		logger.FieldCount:  len(files),
	}).Info("Found NRB files to process")

	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		outcome := s.IngestFile(ctx, f)

		stats.FilesTotal++
		stats.LinesAttempted += outcome.LinesAttempted
		stats.LinesSucceeded += outcome.LinesSucceeded
		switch outcome.Status {
		case domain.FileStatusProcessed:
			stats.FilesProcessed++
		case domain.FileStatusPartiallyProcessed:
			stats.FilesPartial++
		default:
			stats.FilesFailed++
		}

		if s.audit != nil {
			if err := s.audit.RecordOutcome(outcome); err != nil {
				s.logger.WithField(logger.FieldFile, outcome.File).WithError(err).Error("Failed to write audit row")
			}
		}
	}

	stats.EndTime = time.Now()
	s.logger.WithFields(logger.Fields{
		"files":            stats.FilesTotal,
		"processed":        stats.FilesProcessed,
		"partial":          stats.FilesPartial,
		"failed":           stats.FilesFailed,
		"lines_attempted":  stats.LinesAttempted,
		"lines_succeeded":  stats.LinesSucceeded,
		logger.FieldDurationMs: stats.EndTime.Sub(stats.StartTime).Milliseconds(),
	}).Info("Completed processing all files")

	return stats, nil
}

// IngestFile loads a single file and returns its finalized outcome. Bad
// lines are counted and skipped; only a failure to open or read the file
// itself aborts it. Whitespace-only lines carry no record and are not
// counted as attempts.
func (s *IngestService) IngestFile(ctx context.Context, f source.File) *domain.FileOutcome {
	outcome := &domain.FileOutcome{File: f.Name(), StartedAt: time.Now()}
	log := s.logger.WithField(logger.FieldFile, f.Name())
	log.Info("Processing file")

	rc, err := f.Open(ctx)
	if err != nil {
		return s.finishFatal(outcome, fmt.Errorf("failed to open file: %w", err))
	}
	defer rc.Close()

	keyField := s.parser.Schema().Identity()
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		outcome.LinesAttempted++

		if lerr := s.loadLine(ctx, keyField, line, lineNo); lerr != nil {
			log.WithField(logger.FieldLine, lineNo).WithError(lerr).Error("Failed to load line")
			if s.audit != nil {
				if aerr := s.audit.Record(outcome.File, domain.FileStatusFailed, lerr.Error()); aerr != nil {
					log.WithError(aerr).Error("Failed to write audit row")
				}
			}
			continue
		}
		outcome.LinesSucceeded++
	}
	if err := scanner.Err(); err != nil {
		return s.finishFatal(outcome, fmt.Errorf("failed to read file: %w", err))
	}

	outcome.Status = domain.ClassifyOutcome(outcome.LinesAttempted, outcome.LinesSucceeded)
	failed := outcome.LinesAttempted - outcome.LinesSucceeded
	switch outcome.Status {
	case domain.FileStatusProcessed:
		outcome.Detail = fmt.Sprintf("Successfully processed %d records", outcome.LinesSucceeded)
	case domain.FileStatusPartiallyProcessed:
		outcome.Detail = fmt.Sprintf("Processed %d records, %d errors", outcome.LinesSucceeded, failed)
	default:
		if outcome.LinesAttempted == 0 {
			outcome.Detail = "No records found"
		} else {
			outcome.Detail = fmt.Sprintf("All %d records failed", outcome.LinesAttempted)
		}
	}
	outcome.FinishedAt = time.Now()

	log.WithFields(logger.Fields{
		logger.FieldStatus: string(outcome.Status),
		"lines_attempted":  outcome.LinesAttempted,
		"lines_succeeded":  outcome.LinesSucceeded,
	}).Info("File finished")

	return outcome
}

// loadLine runs parse, build, upsert for one line.
func (s *IngestService) loadLine(ctx context.Context, keyField, line string, lineNo int) *domain.LineError {
	rec := s.parser.Parse(line)
	if rec.Len() == 0 {
		return &domain.LineError{Kind: domain.LineErrorParseDegenerate, Line: lineNo}
	}

	doc, err := domain.BuildDocument(rec, keyField)
	if err != nil {
		return &domain.LineError{Kind: domain.LineErrorMissingIdentity, Line: lineNo, Err: err}
	}

	if err := s.store.Upsert(ctx, doc); err != nil {
		return &domain.LineError{
			Kind: domain.LineErrorStore,
			Line: lineNo,
			Err:  fmt.Errorf("doc %s: %w", doc.Key, err),
		}
	}

	s.logger.WithField(logger.FieldDocKey, doc.Key).Debug("Upserted document")
	return nil
}

// finishFatal marks the whole file Failed on an open or read error,
// independent of any per-line counts.
func (s *IngestService) finishFatal(outcome *domain.FileOutcome, err error) *domain.FileOutcome {
	outcome.Status = domain.FileStatusFailed
	outcome.Detail = fmt.Sprintf("Error processing file: %v", err)
	outcome.FinishedAt = time.Now()
	s.logger.WithField(logger.FieldFile, outcome.File).WithError(err).Error("File processing aborted")
	return outcome
}
