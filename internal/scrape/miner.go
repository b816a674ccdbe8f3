package scrape

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
)

// PageContent is the page surface the miner reads: the rendered HTML for
// structural and DOM mining, and the visible text for the last-resort
// numeric heuristics.
type PageContent interface {
	HTML(ctx context.Context) (string, error)
	VisibleText(ctx context.Context) (string, error)
}

// Miner extracts post metadata from page structure using a three-tier
// fallback chain per field: embedded JSON blocks, then DOM heuristics, then
// visible-text patterns. Mine never fails; fields that cannot be recovered
// stay empty.
type Miner struct {
	minContentLength int
	now              func() time.Time
	logger           arbor.ILogger
}

// NewMiner creates a metadata miner.
func NewMiner(minContentLength int, logger arbor.ILogger) *Miner {
	if minContentLength <= 0 {
		minContentLength = 50
	}
	return &Miner{
		minContentLength: minContentLength,
		now:              time.Now,
		logger:           logger,
	}
}

// Mine extracts metadata and the post content body for one page.
func (m *Miner) Mine(ctx context.Context, page PageContent, url string) *models.PartialMetadata {
	meta := models.NewPartialMetadata()

	html, err := page.HTML(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Str("url", url).Msg("Failed to read page HTML, metadata mining degraded")
	}
	text, err := page.VisibleText(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Str("url", url).Msg("Failed to read visible text")
	}

	host := common.Hostname(url)
	if strings.Contains(host, "tiktok.com") {
		m.mineTikTok(html, meta)
	} else {
		m.mineFacebook(html, text, meta)
	}

	if meta.PostDate != "" {
		meta.PostDate = ResolveRelativeDate(meta.PostDate, m.now())
	}

	m.logger.Debug().
		Str("url", url).
		Str("sender", meta.SenderName).
		Str("group", meta.GroupName).
		Int("likes", meta.Likes).
		Int("comments", meta.Comments).
		Msg("Metadata mining completed")
	return meta
}

func (m *Miner) mineFacebook(html, text string, meta *models.PartialMetadata) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc = nil
	}

	var blocks []string
	if doc != nil {
		doc.Find(`script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
			blocks = append(blocks, s.Text())
		})
	}

	// Tier 1: structural mining of embedded JSON.
	for _, block := range blocks {
		m.mineStructuralBlock(block, meta)
	}

	// Tier 2: DOM heuristics, per field, only where tier 1 found nothing.
	if doc != nil {
		if meta.GroupName == "" {
			if name, ok := TryInOrder(
				func() (string, bool) { return groupFromHeader(doc) },
				func() (string, bool) { return groupFromLinks(doc) },
				func() (string, bool) { return groupFromBanner(doc) },
			); ok {
				meta.GroupName = name
				meta.Mark("group", models.StageDOM)
			}
		}
		if meta.SenderName == "" {
			if name, ok := TryInOrder(
				func() (string, bool) { return senderFromPostHeader(doc) },
				func() (string, bool) { return senderFromPostLinks(doc) },
				func() (string, bool) { return senderFromPageLinks(doc) },
			); ok {
				meta.SenderName = name
				meta.Mark("sender", models.StageDOM)
			}
		}
		if meta.PostDate == "" {
			if date, ok := dateFromDOM(doc); ok {
				meta.PostDate = date
				meta.Mark("date", models.StageDOM)
			}
		}
		if meta.Content == "" {
			if content, ok := m.extractContent(doc); ok {
				meta.Content = content
				meta.Mark("content", models.StageDOM)
			}
		}
	}

	// Tier 3: visible-text heuristics, numeric fields only.
	m.mineVisibleStats(text, meta)
}

// Structural key patterns for blobs that are not themselves valid JSON.
var (
	senderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"actor"\s*:\s*\{[^}]*"name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"author"\s*:\s*\{[^}]*"name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"actor_name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"profile_name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"__typename"\s*:\s*"User"[^}]*"name"\s*:\s*"([^"]+)"`),
	}
	groupPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"group"\s*:\s*\{[^}]*"name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"group_name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"__typename"\s*:\s*"Group"[^}]*"name"\s*:\s*"([^"]+)"`),
	}
	reactionPattern = regexp.MustCompile(`"reaction_count"\s*:\s*\{\s*"count"\s*:\s*(\d+)`)
	commentPattern  = regexp.MustCompile(`"comments"\s*:\s*\{\s*"total_count"\s*:\s*(\d+)`)
)

func (m *Miner) mineStructuralBlock(block string, meta *models.PartialMetadata) {
	if meta.SenderName == "" && strings.Contains(block, "actor") {
		for _, p := range senderPatterns {
			if match := p.FindStringSubmatch(block); match != nil {
				name := common.DecodeUnicodeEscapes(strings.TrimSpace(match[1]))
				if validSenderName(name) {
					meta.SenderName = name
					meta.Mark("sender", models.StageStructural)
					break
				}
			}
		}
	}

	if meta.GroupName == "" && strings.Contains(block, "group") {
		for _, p := range groupPatterns {
			if match := p.FindStringSubmatch(block); match != nil {
				name := common.DecodeUnicodeEscapes(strings.TrimSpace(match[1]))
				if validGroupName(name) {
					meta.GroupName = name
					meta.Mark("group", models.StageStructural)
					break
				}
			}
		}
	}

	// Counts: prefer walking the JSON when the block parses, regex otherwise.
	if meta.Likes == 0 && strings.Contains(block, "reaction_count") {
		if n, ok := structuralCount(block, "reaction_count", "count", reactionPattern); ok {
			meta.Likes = n
			meta.Mark("likes", models.StageStructural)
		}
	}
	if meta.Comments == 0 && strings.Contains(block, "total_count") {
		if n, ok := structuralCount(block, "comments", "total_count", commentPattern); ok {
			meta.Comments = n
			meta.Mark("comments", models.StageStructural)
		}
	}
}

// structuralCount digs outerKey.innerKey out of a JSON block, falling back to
// a regex for blobs that do not parse as JSON.
func structuralCount(block, outerKey, innerKey string, fallback *regexp.Regexp) (int, bool) {
	if gjson.Valid(block) {
		if outer, ok := findKey(gjson.Parse(block), outerKey); ok {
			inner := outer.Get(innerKey)
			if inner.Exists() && inner.Int() > 0 {
				return int(inner.Int()), true
			}
		}
	}
	if match := fallback.FindStringSubmatch(block); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// findKey searches a parsed JSON tree depth-first for the first value under
// the given key.
func findKey(res gjson.Result, key string) (gjson.Result, bool) {
	var found gjson.Result
	ok := false
	res.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			ok = true
			return false
		}
		if v.IsObject() || v.IsArray() {
			if f, o := findKey(v, key); o {
				found = f
				ok = true
				return false
			}
		}
		return true
	})
	return found, ok
}

// postContainer returns the most specific post container present.
func postContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{
		`[role="dialog"][aria-modal="true"]`,
		`[role="article"]`,
		`article`,
	} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

var groupHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`shared\s+(?:a\s+)?(?:post|link|photo)\s+to\s+([^\x{2022}\n]+)`),
	regexp.MustCompile(`shared\s+in\s+([^\x{2022}\n]+)`),
	regexp.MustCompile(`בקבוצה\s+([^\x{2022}\n]+)`),
	regexp.MustCompile(`לעמוד\s+([^\x{2022}\n]+)`),
	regexp.MustCompile(`[^>]+>\s*([^\x{2022}\n]+)`),
}

func groupFromHeader(doc *goquery.Document) (string, bool) {
	post := postContainer(doc)
	if post == nil {
		return "", false
	}
	header := post.Find(`header, [role="banner"]`).First()
	if header.Length() == 0 {
		return "", false
	}
	headerText := header.Text()
	for _, p := range groupHeaderPatterns {
		if match := p.FindStringSubmatch(headerText); match != nil {
			candidate := strings.TrimSpace(match[len(match)-1])
			if validGroupName(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func groupFromLinks(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find(`a[href*="/groups/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		href, _ := s.Attr("href")
		if validGroupName(text) && !strings.Contains(text, "Groups") && strings.Contains(href, "/groups/") {
			found = text
			return false
		}
		return true
	})
	return found, found != ""
}

func groupFromBanner(doc *goquery.Document) (string, bool) {
	banner := doc.Find(`[role="banner"]`).First()
	if banner.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(banner.Find("h1, h2").First().Text())
	if validGroupName(text) && !strings.Contains(text, "Home") &&
		!strings.Contains(text, "Profile") && !strings.Contains(text, "Timeline") {
		return text, true
	}
	return "", false
}

var relativeStamp = regexp.MustCompile(`^\d+[hms]$`)

func senderFromPostHeader(doc *goquery.Document) (string, bool) {
	post := postContainer(doc)
	if post == nil {
		return "", false
	}
	header := post.Find(`header, h2, h3, [role="banner"]`).First()
	if header.Length() == 0 {
		return "", false
	}

	var found string
	header.Find(`a[href*="profile"], a[href*="/user/"], a[href*="people"], a[role="link"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			href, _ := s.Attr("href")
			if validSenderName(text) && profileHref(href) {
				found = text
				return false
			}
			return true
		})
	if found != "" {
		return found, true
	}

	// Name is often the first short bold run in the header.
	header.Find(`strong, b, span[dir="auto"] > span, h2, h3`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if validSenderName(text) && len(strings.Fields(text)) <= 4 {
				found = text
				return false
			}
			return true
		})
	return found, found != ""
}

func senderFromPostLinks(doc *goquery.Document) (string, bool) {
	post := postContainer(doc)
	if post == nil {
		return "", false
	}
	var found string
	post.Find(`a[href*="profile"], a[href*="/user/"], a[href*="people"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if validSenderName(text) {
				found = text
				return false
			}
			return true
		})
	return found, found != ""
}

// UI chrome that must never be mistaken for a person's name.
var senderStopwords = []string{
	"see more", "ראה עוד", "just now", "לפני רגע",
	"sponsored", "ממומן", "translate", "comment", "like", "share",
	"facebook", "home", "profile", "timeline", "groups", "marketplace",
}

func senderFromPageLinks(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find(`a[href*="profile"], a[href*="/user/"], a[href*="people"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			href, _ := s.Attr("href")
			if len(text) < 3 || len(text) > 50 || !profileHref(href) {
				return true
			}
			lower := strings.ToLower(text)
			for _, stop := range senderStopwords {
				if strings.Contains(lower, stop) {
					return true
				}
			}
			found = text
			return false
		})
	return found, found != ""
}

func profileHref(href string) bool {
	return strings.Contains(href, "profile") || strings.Contains(href, "/user/") ||
		strings.Contains(href, "people")
}

func dateFromDOM(doc *goquery.Document) (string, bool) {
	for _, sel := range []string{"abbr", "time", "[data-utime]"} {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(el.Text())
		if text == "" {
			text, _ = el.Attr("title")
			text = strings.TrimSpace(text)
		}
		if text != "" {
			return text, true
		}
	}
	return "", false
}

var (
	reactionsLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d][\d,.kKmM]*)\s*reactions?`),
		regexp.MustCompile(`(?i)all\s*reactions?[:\s]+([\d][\d,.kKmM]*)`),
	}
	commentsLinePattern = regexp.MustCompile(`(?i)([\d][\d,.kKmM]*)\s*comments?`)
)

func (m *Miner) mineVisibleStats(text string, meta *models.PartialMetadata) {
	if text == "" || (meta.Likes > 0 && meta.Comments > 0) {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if meta.Likes == 0 {
			for _, p := range reactionsLinePatterns {
				if match := p.FindStringSubmatch(line); match != nil {
					if n := ParseCount(match[1]); n > 0 {
						meta.Likes = n
						meta.Mark("likes", models.StageVisibleText)
					}
					break
				}
			}
		}
		if meta.Comments == 0 {
			if match := commentsLinePattern.FindStringSubmatch(line); match != nil {
				if n := ParseCount(match[1]); n > 0 {
					meta.Comments = n
					meta.Mark("comments", models.StageVisibleText)
				}
			}
		}
		if meta.Likes > 0 && meta.Comments > 0 {
			return
		}
	}
}

func validSenderName(name string) bool {
	return len(name) > 2 && len(name) < 50 &&
		!strings.Contains(name, "Facebook") && !strings.Contains(name, "See more") &&
		!strings.Contains(name, "ראה עוד") && !relativeStamp.MatchString(name) &&
		!strings.Contains(name, "Comment") && !strings.Contains(name, "Like") &&
		!strings.Contains(name, "Share")
}

func validGroupName(name string) bool {
	return len(name) > 3 && len(name) < 100 &&
		!strings.Contains(name, "Facebook") && !strings.Contains(name, "Join") &&
		!strings.Contains(name, "הצטרף") && !strings.Contains(name, "See more")
}
