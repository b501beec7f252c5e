package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/telano/nrbload/internal/domain"
)

// DocumentRepository handles NRB document rows.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *DocumentRepository: repository instance bound to db.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert inserts or replaces the row keyed by the document key. Repeating
// the call with the same key and body leaves exactly one row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - doc: document to create or overwrite.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *domain.Document) error {
	now := time.Now()
	row := &domain.StoredDocument{
		DocKey:    doc.Key,
		Body:      doc.Record,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(row).Error
}
