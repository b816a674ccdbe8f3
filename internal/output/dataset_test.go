package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

func writeRecordsCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	sink := NewCSVSink(path, arbor.NewLogger())
	require.NoError(t, sink.Append(context.Background(), &models.Record{
		URL: "https://example.com/p/a", SenderName: "Dana Levi", Likes: 12,
	}))
	require.NoError(t, sink.Append(context.Background(), &models.Record{
		URL: "https://example.com/p/b", Content: "line one\nline two",
	}))
	require.NoError(t, sink.Close())
	return path
}

func TestCSVDatasetRows(t *testing.T) {
	dataset := NewCSVDataset(writeRecordsCSV(t))

	rows, err := dataset.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "https://example.com/p/a", rows[0].URL)
	assert.Equal(t, "Dana Levi", rows[0].Values[models.RepairSender])
	assert.Equal(t, "12", rows[0].Values[models.RepairLikes])
	assert.Equal(t, "", rows[1].Values[models.RepairSender])
	assert.Equal(t, "line one\nline two", rows[1].Values[models.RepairContent])
}

func TestCSVDatasetBatchUpdate(t *testing.T) {
	path := writeRecordsCSV(t)
	dataset := NewCSVDataset(path)

	err := dataset.BatchUpdate(context.Background(), []interfaces.CellUpdate{
		{Row: 1, Field: models.RepairSender, Value: "Yossi Cohen"},
		{Row: 0, Field: models.RepairLikes, Value: "99"},
	})
	require.NoError(t, err)

	rows, err := dataset.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Yossi Cohen", rows[1].Values[models.RepairSender])
	assert.Equal(t, "99", rows[0].Values[models.RepairLikes])

	// The untouched content cell survives the rewrite, as does the BOM.
	assert.Equal(t, "line one\nline two", rows[1].Values[models.RepairContent])
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\ufeff"))
}

func TestCSVDatasetBadRowFails(t *testing.T) {
	dataset := NewCSVDataset(writeRecordsCSV(t))
	err := dataset.BatchUpdate(context.Background(), []interfaces.CellUpdate{
		{Row: 9, Field: models.RepairLikes, Value: "1"},
	})
	assert.Error(t, err)
}

func TestCSVDatasetMissingFile(t *testing.T) {
	dataset := NewCSVDataset(filepath.Join(t.TempDir(), "none.csv"))
	_, err := dataset.Rows(context.Background())
	assert.Error(t, err)
}
