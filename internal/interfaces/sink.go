package interfaces

import (
	"context"

	"github.com/ternarybob/specto/internal/models"
)

// RecordSink receives one completed record per processed URL. Implementations
// must tolerate repeated appends of the same URL: the pipeline supplies no
// idempotency key and retried runs can deliver duplicates.
type RecordSink interface {
	Append(ctx context.Context, record *models.Record) error
}

// AuditLog receives one entry per processed URL, successful or not.
type AuditLog interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
}

// AuditReader looks up past audit entries, newest first.
type AuditReader interface {
	FindByURL(url string) (*models.AuditEntry, error)
}
