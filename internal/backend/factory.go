package backend

import (
	"context"
	"fmt"
	"log/slog"

	"txdash/internal/dataset"
	"txdash/internal/dataset/google"
	"txdash/internal/dataset/memory"
	"txdash/internal/dataset/remote"
	"txdash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger   *slog.Logger
	observer dataset.FetchObserver
}

// NewFactory creates a new backend factory. Sources it builds report every
// fetch to observer when it is non-nil.
func NewFactory(logger *slog.Logger, observer dataset.FetchObserver) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:   logger,
		observer: observer,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case RemoteBackend:
		res, err = f.createRemoteBackend(config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res.Type = config.Type
	res.Source = dataset.Instrument(config.Type.String(), res.Source, f.observer)
	return res, nil
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*BackendResult, error) {
	src := remote.New(config.DatasetURL, config.DatasetTimeout)

	f.logger.Info("Initialized remote dataset source",
		"url", src.URL(),
		"timeout", config.DatasetTimeout)

	return &BackendResult{Source: src}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.DatasetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory source: %w", err)
	}

	f.logger.Info("Initialized memory dataset source",
		"file", config.DatasetFile,
		"records", store.Len())

	return &BackendResult{Source: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite dataset source", "db_path", config.SQLiteDBPath)

	return &BackendResult{Source: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets dataset source",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"range", config.GoogleSheetRange)

	return &BackendResult{Source: cli}, nil
}
