package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/specto/internal/models"
)

var (
	storyHandle = regexp.MustCompile(`/stories/([^/?]+)`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
)

// StoryRecord builds the record for a story without visiting the page. The
// sender comes from the URL path segment after /stories/; a purely numeric
// segment is a story ID, not a handle, and leaves the operator-supplied name
// in place.
func StoryRecord(link models.LinkEntry) *models.Record {
	sender := strings.TrimSpace(link.Name)
	if m := storyHandle.FindStringSubmatch(link.URL); m != nil && !digitsOnly.MatchString(m[1]) {
		sender = strings.NewReplacer("_", " ", ".", " ").Replace(m[1])
	}
	if sender == "" {
		sender = "Unknown"
	}
	return placeholderRecord(link, sender, fmt.Sprintf("סטורי של %s - תוכן זמני שאינו ניתן לחילוץ", sender))
}

// SkipRecord builds the placeholder row for a story or reel skipped outside
// visual mode.
func SkipRecord(link models.LinkEntry, classification models.PostClassification) *models.Record {
	kind := "סטורי"
	if classification.IsReel {
		kind = "רילס"
	}
	sender := strings.TrimSpace(link.Name)
	if sender == "" {
		sender = "Unknown"
	}
	return placeholderRecord(link, sender, kind+" - לא ניתן לחלץ תוכן")
}

func placeholderRecord(link models.LinkEntry, sender, summary string) *models.Record {
	now := time.Now()
	return &models.Record{
		URL:        link.URL,
		SenderName: sender,
		PostDate:   NormalizeDate(link.Date),
		Content:    NoContentMarker,
		Summary:    summary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
