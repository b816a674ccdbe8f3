package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/specto/internal/models"
)

func intPtr(n int) *int { return &n }

func TestReconcileVisionWinsWithPositiveCounts(t *testing.T) {
	heuristic := models.NewPartialMetadata()
	heuristic.Likes = 10
	heuristic.Comments = 5

	visionResult := &models.VisionResult{Likes: intPtr(120), Comments: intPtr(0)}

	record := Reconcile("https://example.com/p/1", heuristic, visionResult, "")
	assert.Equal(t, 120, record.Likes, "positive model count overrides the page")
	assert.Equal(t, 5, record.Comments, "model zero keeps the page value")
}

func TestReconcileHeuristicWhenVisionMissing(t *testing.T) {
	heuristic := models.NewPartialMetadata()
	heuristic.Likes = 34
	heuristic.SenderName = "Dana Levi"

	record := Reconcile("https://example.com/p/1", heuristic, &models.VisionResult{}, "")
	assert.Equal(t, 34, record.Likes)
	assert.Equal(t, "Dana Levi", record.SenderName)
}

func TestReconcileSenderFallbackChain(t *testing.T) {
	record := Reconcile("https://example.com/p/1", nil, nil, "Hint Name")
	assert.Equal(t, "Hint Name", record.SenderName)

	record = Reconcile("https://example.com/p/1", nil, nil, "")
	assert.Equal(t, "Unknown", record.SenderName)
}

func TestReconcileDateNormalized(t *testing.T) {
	visionResult := &models.VisionResult{PostDate: "07.06.25"}
	record := Reconcile("https://example.com/p/1", nil, visionResult, "")
	assert.Equal(t, "07/06/25 00:00", record.PostDate)
}

func TestReconcileSummaryFallsBackToContent(t *testing.T) {
	heuristic := models.NewPartialMetadata()
	heuristic.Content = "Short post body"

	record := Reconcile("https://example.com/p/1", heuristic, nil, "")
	assert.Equal(t, "Short post body", record.Summary)

	empty := Reconcile("https://example.com/p/1", nil, nil, "")
	assert.Equal(t, NoContentMarker, empty.Summary)
	assert.Equal(t, NoContentMarker, empty.Content)
}

func TestReconcileQuotaSentinelPassesThrough(t *testing.T) {
	heuristic := models.NewPartialMetadata()
	heuristic.Likes = 7
	visionResult := models.QuotaFallback("Name", heuristic)

	record := Reconcile("https://example.com/p/1", heuristic, visionResult, "")
	assert.Equal(t, models.ValidationQuotaExhausted, record.Validation)
	assert.Equal(t, 7, record.Likes)
}
