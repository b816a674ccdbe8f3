package records

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "records"),
	}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSaveAndGet(t *testing.T) {
	store := testStore(t)

	record := &models.Record{
		URL:        "https://example.com/p/1",
		SenderName: "Dana Levi",
		Likes:      12,
	}
	require.NoError(t, store.Save(record))

	loaded, err := store.Get("https://example.com/p/1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Dana Levi", loaded.SenderName)
	assert.Equal(t, 12, loaded.Likes)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestStoreUpsertByURL(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Save(&models.Record{URL: "https://example.com/p/1", Likes: 1}))
	first, err := store.Get("https://example.com/p/1")
	require.NoError(t, err)

	require.NoError(t, store.Save(&models.Record{URL: "https://example.com/p/1", Likes: 99}))

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 1, "same URL must replace, not duplicate")
	assert.Equal(t, 99, records[0].Likes)
	assert.Equal(t, first.CreatedAt, records[0].CreatedAt, "creation time survives upserts")
}

func TestStoreGetMissing(t *testing.T) {
	store := testStore(t)

	record, err := store.Get("https://example.com/nope")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestStoreRejectsEmptyURL(t *testing.T) {
	store := testStore(t)
	assert.Error(t, store.Save(&models.Record{}))
}

func TestDatasetRowsAndBatchUpdate(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(&models.Record{URL: "https://example.com/p/a", SenderName: "A", Likes: 1}))
	require.NoError(t, store.Save(&models.Record{URL: "https://example.com/p/b", Likes: 0}))

	dataset := NewDataset(store)
	rows, err := dataset.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Values[models.RepairSender])
	assert.Equal(t, "1", rows[0].Values[models.RepairLikes])

	err = dataset.BatchUpdate(context.Background(), []interfaces.CellUpdate{
		{Row: 1, Field: models.RepairLikes, Value: "42"},
		{Row: 1, Field: models.RepairSender, Value: "B"},
	})
	require.NoError(t, err)

	updated, err := store.Get("https://example.com/p/b")
	require.NoError(t, err)
	assert.Equal(t, 42, updated.Likes)
	assert.Equal(t, "B", updated.SenderName)
}

func TestDatasetUnknownRowFails(t *testing.T) {
	store := testStore(t)
	dataset := NewDataset(store)
	_, err := dataset.Rows(context.Background())
	require.NoError(t, err)

	err = dataset.BatchUpdate(context.Background(), []interfaces.CellUpdate{
		{Row: 7, Field: models.RepairLikes, Value: "1"},
	})
	assert.Error(t, err)
}
