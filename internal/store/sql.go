package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/telano/nrbload/internal/config"
	"github.com/telano/nrbload/internal/domain"
	"github.com/telano/nrbload/internal/repository"
)

// sqlStore persists documents in a relational table through GORM, using
// SQLite or PostgreSQL depending on the configured driver.
type sqlStore struct {
	db   *gorm.DB
	repo *repository.DocumentRepository
}

func newSQLStore(cfg *config.DatabaseConfig) (*sqlStore, error) {
	db, err := repository.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	return &sqlStore{db: db, repo: repository.NewDocumentRepository(db)}, nil
}

func (s *sqlStore) Upsert(ctx context.Context, doc *domain.Document) error {
	return s.repo.Upsert(ctx, doc)
}

func (s *sqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
