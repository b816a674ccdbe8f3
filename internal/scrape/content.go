package scrape

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Lines that look like post chrome rather than message body.
var metadataLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d+\s*(reactions?|comments?|shares?|likes?)$`),
	regexp.MustCompile(`(?i)^(like|comment|share|reply|translate)$`),
	regexp.MustCompile(`^\d+\s*[hdwm]$`),
	regexp.MustCompile(`(?i)^(yesterday|today|just now)`),
	regexp.MustCompile(`^\d{1,2}\s+\w+(\s+\d{4})?(\s+at\s+\d{1,2}:\d{2})?$`),
	regexp.MustCompile(`(?i)^(sponsored|ממומן)$`),
}

func looksLikeMetadata(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range metadataLinePatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// extractContent pulls the longest qualifying message body from the post
// container, with dedicated message selectors and a markdown conversion of
// the whole container as fallbacks.
func (m *Miner) extractContent(doc *goquery.Document) (string, bool) {
	post := postContainer(doc)
	scope := doc.Selection
	if post != nil {
		scope = post
	}

	// Longest div[dir="auto"] run that clears the minimum length.
	best := ""
	scope.Find(`div[dir="auto"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) >= m.minContentLength && len(text) > len(best) && !looksLikeMetadata(text) {
			best = text
		}
	})
	if best != "" {
		return best, true
	}

	for _, sel := range []string{
		`[data-ad-preview="message"]`,
		`[data-ad-comet-preview="message"]`,
		`[data-testid="post_message"]`,
		`.userContent`,
	} {
		text := strings.TrimSpace(scope.Find(sel).First().Text())
		if len(text) >= m.minContentLength {
			return text, true
		}
	}

	if post != nil {
		if html, err := post.Html(); err == nil {
			converter := md.NewConverter("", true, nil)
			if markdown, err := converter.ConvertString(html); err == nil {
				markdown = strings.TrimSpace(markdown)
				if len(markdown) >= m.minContentLength {
					return markdown, true
				}
			}
		}
	}
	return "", false
}
