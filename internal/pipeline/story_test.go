package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/specto/internal/models"
)

func TestStoryRecordSenderFromURL(t *testing.T) {
	link := models.LinkEntry{
		URL:  "https://www.instagram.com/stories/dana_levi.art/3141592653589/",
		Name: "Operator Name",
	}

	record := StoryRecord(link)
	assert.Equal(t, "dana levi art", record.SenderName, "URL handle wins over the operator hint")
	assert.Contains(t, record.Summary, "dana levi art")
	assert.Equal(t, NoContentMarker, record.Content)
	assert.Equal(t, 0, record.Likes)
}

func TestStoryRecordNumericSegmentKeepsHint(t *testing.T) {
	link := models.LinkEntry{
		URL:  "https://www.facebook.com/stories/120987654321098765",
		Name: "Dana Levi",
		Date: "12/06/25",
	}

	record := StoryRecord(link)
	assert.Equal(t, "Dana Levi", record.SenderName)
	assert.Equal(t, "12/06/25 00:00", record.PostDate)
}

func TestStoryRecordUnknownSender(t *testing.T) {
	record := StoryRecord(models.LinkEntry{URL: "https://www.facebook.com/stories/98765"})
	assert.Equal(t, "Unknown", record.SenderName)
}

func TestSkipRecordKinds(t *testing.T) {
	story := SkipRecord(
		models.LinkEntry{URL: "https://www.facebook.com/stories/1", Name: "Dana"},
		models.PostClassification{IsStory: true},
	)
	assert.Equal(t, "Dana", story.SenderName)
	assert.Equal(t, "סטורי - לא ניתן לחלץ תוכן", story.Summary)

	reel := SkipRecord(
		models.LinkEntry{URL: "https://www.facebook.com/reel/2"},
		models.PostClassification{IsReel: true},
	)
	assert.Equal(t, "Unknown", reel.SenderName)
	assert.Equal(t, "רילס - לא ניתן לחלץ תוכן", reel.Summary)
}
