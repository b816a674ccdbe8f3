package records

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// Dataset exposes the record store to the repair engine as an indexed,
// batch-updatable table. Row indices are assigned per Rows call (records
// sorted by URL) and stay valid until the next call.
type Dataset struct {
	store *Store

	mu   sync.Mutex
	urls map[int]string
}

// NewDataset wraps the store in the dataset view.
func NewDataset(store *Store) *Dataset {
	return &Dataset{store: store, urls: map[int]string{}}
}

// Rows materializes every stored record as a field-keyed row.
func (d *Dataset) Rows(ctx context.Context) ([]interfaces.DatasetRow, error) {
	records, err := d.store.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].URL < records[j].URL })

	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = make(map[int]string, len(records))

	rows := make([]interfaces.DatasetRow, 0, len(records))
	for i, record := range records {
		d.urls[i] = record.URL
		rows = append(rows, interfaces.DatasetRow{
			Index: i,
			URL:   record.URL,
			Values: map[models.RepairField]string{
				models.RepairSender:   record.SenderName,
				models.RepairGroup:    record.GroupName,
				models.RepairDate:     record.PostDate,
				models.RepairContent:  record.Content,
				models.RepairLikes:    strconv.Itoa(record.Likes),
				models.RepairComments: strconv.Itoa(record.Comments),
				models.RepairShares:   strconv.Itoa(record.Shares),
			},
		})
	}
	return rows, nil
}

// BatchUpdate applies cell updates row by row. Each row's record is loaded,
// patched and saved; a missing row fails the batch.
func (d *Dataset) BatchUpdate(ctx context.Context, updates []interfaces.CellUpdate) error {
	d.mu.Lock()
	urls := make(map[int]string, len(d.urls))
	for k, v := range d.urls {
		urls[k] = v
	}
	d.mu.Unlock()

	for _, update := range updates {
		url, ok := urls[update.Row]
		if !ok {
			return fmt.Errorf("unknown dataset row %d", update.Row)
		}
		record, err := d.store.Get(url)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("record for row %d (%s) disappeared", update.Row, url)
		}
		applyField(record, update.Field, update.Value)
		if err := d.store.Save(record); err != nil {
			return err
		}
	}
	return nil
}

func applyField(record *models.Record, field models.RepairField, value string) {
	switch field {
	case models.RepairSender:
		record.SenderName = value
	case models.RepairGroup:
		record.GroupName = value
	case models.RepairDate:
		record.PostDate = value
	case models.RepairContent:
		record.Content = value
	case models.RepairLikes:
		record.Likes = atoiSafe(value)
	case models.RepairComments:
		record.Comments = atoiSafe(value)
	case models.RepairShares:
		record.Shares = atoiSafe(value)
	}
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
