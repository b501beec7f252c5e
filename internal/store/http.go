package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/telano/nrbload/internal/config"
	"github.com/telano/nrbload/internal/domain"
)

// httpStore loads documents into a remote document API over REST. Each
// upsert is a PUT of the record JSON to {base}/{bucket}/{key}; the server
// owns replace-on-key semantics, which makes the call idempotent.
type httpStore struct {
	client *resty.Client
	bucket string
}

func newHTTPStore(cfg *config.HTTPStoreConfig) *httpStore {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &httpStore{client: client, bucket: cfg.Bucket}
}

func (s *httpStore) Upsert(ctx context.Context, doc *domain.Document) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"bucket": s.bucket,
			"key":    doc.Key,
		}).
		SetBody(doc.Record).
		Put("/{bucket}/{key}")
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", doc.Key, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to upsert %s: store returned %s", doc.Key, resp.Status())
	}
	return nil
}

func (s *httpStore) Close() error {
	return nil
}
