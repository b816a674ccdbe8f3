package models

import "strings"

// PostClassification flags URL shapes that need special handling.
type PostClassification struct {
	IsStory  bool
	IsReel   bool
	IsTikTok bool
}

// Special reports whether the post needs a non-default processing branch.
func (c PostClassification) Special() bool {
	return c.IsStory || c.IsReel || c.IsTikTok
}

// Classify inspects the URL shape. Stories and reels render as ephemeral
// overlays and are only extracted in visual mode.
func Classify(url string) PostClassification {
	lower := strings.ToLower(url)
	return PostClassification{
		IsStory:  strings.Contains(lower, "story") || strings.Contains(lower, "stories"),
		IsReel:   strings.Contains(lower, "reel"),
		IsTikTok: strings.Contains(lower, "tiktok.com"),
	}
}
