package pipeline

import (
	"strings"
	"time"

	"github.com/ternarybob/specto/internal/models"
)

// NoContentMarker fills the content and summary of posts with no
// extractable text.
const NoContentMarker = "No content"

// Reconcile merges vision output with page-mined metadata into the final
// record. Counts trust the model only when it saw something; text fields
// fall through model, page, operator hint, in that order.
func Reconcile(url string, heuristic *models.PartialMetadata, visionResult *models.VisionResult, fallbackName string) *models.Record {
	if heuristic == nil {
		heuristic = models.NewPartialMetadata()
	}
	if visionResult == nil {
		visionResult = &models.VisionResult{}
	}

	now := time.Now()
	record := &models.Record{
		URL:        url,
		Validation: visionResult.Validation,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	record.Likes = reconcileCount(visionResult.LikesOr(0), heuristic.Likes)
	record.Comments = reconcileCount(visionResult.CommentsOr(0), heuristic.Comments)
	record.Shares = reconcileCount(visionResult.SharesOr(0), heuristic.Shares)

	record.SenderName = firstNonEmpty(visionResult.SenderName, heuristic.SenderName, fallbackName, "Unknown")
	record.GroupName = firstNonEmpty(visionResult.GroupName, heuristic.GroupName)
	record.Content = firstNonEmpty(visionResult.Content, heuristic.Content, NoContentMarker)
	record.PostDate = NormalizeDate(firstNonEmpty(visionResult.PostDate, heuristic.PostDate))

	record.Summary = visionResult.Summary
	if record.Summary == "" {
		record.Summary = summarize(record.Content)
	}
	return record
}

// reconcileCount lets the model override the page value only with a positive
// count. A model zero usually means "not visible in the crop", not zero
// engagement.
func reconcileCount(visionCount, heuristicCount int) int {
	if visionCount > 0 {
		return visionCount
	}
	return heuristicCount
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func summarize(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return NoContentMarker
	}
	runes := []rune(content)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return content
}
