package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
)

// mineTikTok handles the TikTok page shape: a single hydration JSON block plus
// data-e2e annotated elements.
func (m *Miner) mineTikTok(html string, meta *models.PartialMetadata) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	doc.Find(`script[type="application/json"], script#SIGI_STATE, script#__UNIVERSAL_DATA_FOR_REHYDRATION__`).
		Each(func(_ int, s *goquery.Selection) {
			block := s.Text()
			if !gjson.Valid(block) {
				return
			}
			root := gjson.Parse(block)
			if meta.Likes == 0 {
				if v, ok := findKey(root, "diggCount"); ok && v.Int() > 0 {
					meta.Likes = int(v.Int())
					meta.Mark("likes", models.StageStructural)
				}
			}
			if meta.Comments == 0 {
				if v, ok := findKey(root, "commentCount"); ok && v.Int() > 0 {
					meta.Comments = int(v.Int())
					meta.Mark("comments", models.StageStructural)
				}
			}
			if meta.Shares == 0 {
				if v, ok := findKey(root, "shareCount"); ok && v.Int() > 0 {
					meta.Shares = int(v.Int())
					meta.Mark("shares", models.StageStructural)
				}
			}
			if meta.SenderName == "" {
				if v, ok := findKey(root, "uniqueId"); ok && v.String() != "" {
					meta.SenderName = common.DecodeUnicodeEscapes(v.String())
					meta.Mark("sender", models.StageStructural)
				}
			}
			if meta.Content == "" {
				if v, ok := findKey(root, "desc"); ok && len(v.String()) > 0 {
					meta.Content = common.DecodeUnicodeEscapes(v.String())
					meta.Mark("content", models.StageStructural)
				}
			}
		})

	if meta.SenderName == "" {
		if name := strings.TrimSpace(doc.Find(`[data-e2e="browse-username"]`).First().Text()); name != "" {
			meta.SenderName = name
			meta.Mark("sender", models.StageDOM)
		}
	}
	if meta.Likes == 0 {
		if n := ParseCount(doc.Find(`[data-e2e="like-count"], [data-e2e="browse-like-count"]`).First().Text()); n > 0 {
			meta.Likes = n
			meta.Mark("likes", models.StageDOM)
		}
	}
	if meta.Comments == 0 {
		if n := ParseCount(doc.Find(`[data-e2e="comment-count"], [data-e2e="browse-comment-count"]`).First().Text()); n > 0 {
			meta.Comments = n
			meta.Mark("comments", models.StageDOM)
		}
	}
	if meta.Shares == 0 {
		if n := ParseCount(doc.Find(`[data-e2e="share-count"]`).First().Text()); n > 0 {
			meta.Shares = n
			meta.Mark("shares", models.StageDOM)
		}
	}
	if meta.Content == "" {
		if desc := strings.TrimSpace(doc.Find(`[data-e2e="browse-video-desc"]`).First().Text()); desc != "" {
			meta.Content = desc
			meta.Mark("content", models.StageDOM)
		}
	}
}
