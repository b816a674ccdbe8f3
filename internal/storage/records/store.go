package records

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
)

// Store persists extracted records in Badger, keyed by post URL so a
// re-scraped post replaces its earlier row instead of duplicating it.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewStore opens the record database.
func NewStore(config common.BadgerConfig, logger arbor.ILogger) (*Store, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	// Disable default badger logger to use arbor.
	options.Options = badger.DefaultOptions(config.Path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Record database initialized")
	return &Store{store: store, logger: logger}, nil
}

// Save upserts a record by URL, preserving the original creation time.
func (s *Store) Save(record *models.Record) error {
	if record == nil || record.URL == "" {
		return fmt.Errorf("record must have a URL")
	}

	var existing models.Record
	if err := s.store.Get(record.URL, &existing); err == nil {
		record.CreatedAt = existing.CreatedAt
	} else if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = time.Now()

	if err := s.store.Upsert(record.URL, record); err != nil {
		return fmt.Errorf("failed to save record %s: %w", record.URL, err)
	}
	return nil
}

// Get returns the record for a URL, or nil when none exists.
func (s *Store) Get(url string) (*models.Record, error) {
	var record models.Record
	err := s.store.Get(url, &record)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", url, err)
	}
	return &record, nil
}

// List returns every stored record.
func (s *Store) List() ([]*models.Record, error) {
	var records []*models.Record
	if err := s.store.Find(&records, badgerhold.Where("URL").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
