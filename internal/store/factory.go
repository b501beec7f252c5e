package store

import (
	"errors"
	"fmt"

	"github.com/telano/nrbload/internal/config"
)

// New creates a DocumentStore instance based on the configuration.
// Parameters:
//   - cfg: store configuration including backend selection.
// Returns:
//   - DocumentStore: initialized store implementation.
//   - error: non-nil if the backend is unknown or cannot be created.
func New(cfg *config.StoreConfig) (DocumentStore, error) {
	switch cfg.Backend {
	case "http":
		if cfg.HTTP.BaseURL == "" {
			return nil, errors.New("http store requires store.http.base_url")
		}
		return newHTTPStore(&cfg.HTTP), nil
	case "sqlite", "postgres", "":
		dbCfg := cfg.Database
		if cfg.Backend != "" {
			dbCfg.Driver = cfg.Backend
		}
		return newSQLStore(&dbCfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
