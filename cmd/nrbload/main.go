package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/telano/nrbload/internal/audit"
	"github.com/telano/nrbload/internal/config"
	"github.com/telano/nrbload/internal/domain"
	"github.com/telano/nrbload/internal/logger"
	"github.com/telano/nrbload/internal/parser"
	"github.com/telano/nrbload/internal/service"
	"github.com/telano/nrbload/internal/source"
	"github.com/telano/nrbload/internal/source/local"
	s3source "github.com/telano/nrbload/internal/source/s3"
	"github.com/telano/nrbload/internal/store"
)

func main() {
	os.Exit(run())
}

// run wires the loader and returns the process exit code: 0 when no file
// ended Failed, 1 otherwise. Partially processed files are a warning
// condition, not a failure.
func run() int {
	configPath := flag.String("config", "", "Path to config file")
	dir := flag.String("dir", "", "Directory containing NRB log files (overrides config)")
	sourceType := flag.String("source", "", "Input source type: local or s3 (overrides config)")
	backend := flag.String("store", "", "Store backend: sqlite, postgres or http (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		return 1
	}
	if *dir != "" {
		cfg.Source.Dir = *dir
	}
	if *sourceType != "" {
		cfg.Source.Type = *sourceType
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "nrbload",
	}).WithField(logger.FieldRunID, uuid.New().String())
	logger.SetDefaultLogger(appLogger)

	appLogger.WithFields(logger.Fields{
		logger.FieldSource: cfg.Source.Type,
		"store":            cfg.Store.Backend,
	}).Info("Starting NRB load run")

	auditLog, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		appLogger.WithError(err).Error("Failed to open audit log")
		return 1
	}
	defer auditLog.Close()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	docStore, err := store.New(&cfg.Store)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize store")
		if aerr := auditLog.Record("CONNECTION", domain.FileStatusFailed, err.Error()); aerr != nil {
			appLogger.WithError(aerr).Error("Failed to write audit row")
		}
		return 1
	}
	defer docStore.Close()

	src, err := buildSource(ctx, &cfg.Source)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize source")
		if aerr := auditLog.Record("DIRECTORY", domain.FileStatusFailed, err.Error()); aerr != nil {
			appLogger.WithError(aerr).Error("Failed to write audit row")
		}
		return 1
	}

	schema := domain.NewSchema(cfg.Schema.FieldNames)
	svc := service.NewIngestService(parser.New(schema), docStore, auditLog, appLogger)

	stats, err := svc.Run(ctx, src)
	if err != nil {
		appLogger.WithError(err).Error("Run aborted")
		if aerr := auditLog.Record("DIRECTORY", domain.FileStatusFailed, err.Error()); aerr != nil {
			appLogger.WithError(aerr).Error("Failed to write audit row")
		}
		return 1
	}

	if stats.Failed() {
		return 1
	}
	return 0
}

// buildSource constructs the configured input source.
func buildSource(ctx context.Context, cfg *config.SourceConfig) (source.Source, error) {
	switch cfg.Type {
	case "", "local":
		return local.New(cfg.Dir, cfg.Extension), nil
	case "s3":
		return s3source.New(ctx, &s3source.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Extension: cfg.Extension,
		})
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}
