package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// fieldColumns maps repair fields onto CSV header names.
var fieldColumns = map[models.RepairField]string{
	models.RepairSender:   "sender_name",
	models.RepairGroup:    "group_name",
	models.RepairDate:     "post_date",
	models.RepairContent:  "content",
	models.RepairLikes:    "likes",
	models.RepairComments: "comments",
	models.RepairShares:   "shares",
}

// CSVDataset exposes an existing records CSV file to the repair engine. Row
// indices are data-row positions, stable as long as the file is not appended
// to between Rows and BatchUpdate.
type CSVDataset struct {
	path string
	mu   sync.Mutex
}

// NewCSVDataset wraps the CSV file at path.
func NewCSVDataset(path string) *CSVDataset {
	return &CSVDataset{path: path}
}

// Rows reads every data row, keyed by the header columns.
func (d *CSVDataset) Rows(ctx context.Context) ([]interfaces.DatasetRow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	header, data, err := d.read()
	if err != nil {
		return nil, err
	}

	columns := columnIndex(header)
	urlCol, ok := columns["url"]
	if !ok {
		return nil, fmt.Errorf("CSV dataset %s has no url column", d.path)
	}

	rows := make([]interfaces.DatasetRow, 0, len(data))
	for i, record := range data {
		values := map[models.RepairField]string{}
		for field, column := range fieldColumns {
			if col, ok := columns[column]; ok && col < len(record) {
				values[field] = record[col]
			}
		}
		url := ""
		if urlCol < len(record) {
			url = record[urlCol]
		}
		rows = append(rows, interfaces.DatasetRow{Index: i, URL: url, Values: values})
	}
	return rows, nil
}

// BatchUpdate patches cells and rewrites the file through a temp-and-rename
// so a crash mid-write cannot truncate the dataset.
func (d *CSVDataset) BatchUpdate(ctx context.Context, updates []interfaces.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	header, data, err := d.read()
	if err != nil {
		return err
	}
	columns := columnIndex(header)

	for _, update := range updates {
		col, ok := columns[fieldColumns[update.Field]]
		if !ok {
			return fmt.Errorf("CSV dataset %s has no column for field %s", d.path, update.Field)
		}
		if update.Row < 0 || update.Row >= len(data) {
			return fmt.Errorf("unknown dataset row %d", update.Row)
		}
		for len(data[update.Row]) <= col {
			data[update.Row] = append(data[update.Row], "")
		}
		data[update.Row][col] = update.Value
	}

	return d.rewrite(header, data)
}

func (d *CSVDataset) read() ([]string, [][]string, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV dataset %s: %w", d.path, err)
	}
	content := strings.TrimPrefix(string(raw), "\ufeff")

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV dataset %s: %w", d.path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV dataset %s is empty", d.path)
	}
	return records[0], records[1:], nil
}

func (d *CSVDataset) rewrite(header []string, data [][]string) error {
	tmp := d.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file: %w", err)
	}

	if _, err := file.WriteString("\ufeff"); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	writer := csv.NewWriter(file)
	writer.Write(header)
	writer.WriteAll(data)
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write CSV dataset: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, d.path)
}

func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}
