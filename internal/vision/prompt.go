package vision

import (
	"fmt"
	"strings"

	"github.com/ternarybob/specto/internal/models"
)

// BuildPrompt assembles the extraction prompt. When the page miner already
// recovered engagement counts they are offered to the model for
// cross-checking, and the model is asked to flag disagreements in the
// validation field.
func BuildPrompt(heuristic *models.PartialMetadata) string {
	var b strings.Builder

	b.WriteString(`Analyze this social media post screenshot and extract the following fields.
Respond with ONLY a single JSON object, no markdown fences and no commentary:

{
  "sender_name": "the name of the person who published the post",
  "group_name": "the group or page the post was published in, empty string if none",
  "post_date": "the post date exactly as shown on screen",
  "content": "the full text content of the post",
  "summary": "a summary of the post in Hebrew, up to two sentences",
  "likes": <number of likes or reactions, 0 if not visible>,
  "comments": <number of comments, 0 if not visible>,
  "shares": <number of shares, 0 if not visible>,
  "validation": ""
}

Counts shown with K or M suffixes must be expanded to plain integers.
If a field is not visible in the screenshot, use an empty string for text
fields and 0 for counts.`)

	if heuristic != nil && heuristic.HasStats() {
		b.WriteString("\n\nValues already read from the page markup:")
		if heuristic.Likes > 0 {
			fmt.Fprintf(&b, " likes=%d", heuristic.Likes)
		}
		if heuristic.Comments > 0 {
			fmt.Fprintf(&b, " comments=%d", heuristic.Comments)
		}
		if heuristic.Shares > 0 {
			fmt.Fprintf(&b, " shares=%d", heuristic.Shares)
		}
		b.WriteString(`
Compare these against what the screenshot shows. If they match, set
"validation" to "OK". If the screenshot disagrees, set "validation" to the
values you see, formatted like "L:12 C:3", and use those values in the
count fields.`)
	}

	return b.String()
}

// BuildFieldPrompt asks for a single field, used by targeted repair passes.
func BuildFieldPrompt(field models.RepairField) string {
	descriptions := map[models.RepairField]string{
		models.RepairLikes:    `"likes": <number of likes or reactions, 0 if not visible>`,
		models.RepairComments: `"comments": <number of comments, 0 if not visible>`,
		models.RepairShares:   `"shares": <number of shares, 0 if not visible>`,
		models.RepairSender:   `"sender_name": "the name of the person who published the post"`,
		models.RepairDate:     `"post_date": "the post date exactly as shown on screen"`,
		models.RepairGroup:    `"group_name": "the group or page the post was published in"`,
		models.RepairContent:  `"content": "the full text content of the post"`,
	}
	return fmt.Sprintf(`Analyze this social media post screenshot and extract one field.
Respond with ONLY a single JSON object, no markdown fences and no commentary:

{
  %s
}

Counts shown with K or M suffixes must be expanded to plain integers.`, descriptions[field])
}
