package interfaces

import (
	"context"

	"github.com/ternarybob/specto/internal/models"
)

// DatasetRow is one persisted record row as seen by the repair engine.
type DatasetRow struct {
	Index  int // stable row identifier within the dataset
	URL    string
	Values map[models.RepairField]string
}

// CellUpdate writes one field of one row.
type CellUpdate struct {
	Row   int
	Field models.RepairField
	Value string
}

// Dataset is a persisted collection of records the repair engine can backfill.
// Updates are batched; implementations decide atomicity per batch.
type Dataset interface {
	Rows(ctx context.Context) ([]DatasetRow, error)
	BatchUpdate(ctx context.Context, updates []CellUpdate) error
}

// RecordStore persists records locally, keyed by URL.
type RecordStore interface {
	Save(record *models.Record) error
	Get(url string) (*models.Record, error)
	List() ([]*models.Record, error)
	Close() error
}
