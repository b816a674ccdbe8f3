package vision

import (
	"github.com/tidwall/gjson"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
)

// DecodeResult maps a repaired JSON object onto a VisionResult. Text fields
// get a recursive unicode-escape decode since models echo the page's escaped
// strings back verbatim. Count fields stay nil when absent so callers can
// tell "not reported" from zero.
func DecodeResult(jsonStr string) *models.VisionResult {
	root := gjson.Parse(jsonStr)
	result := &models.VisionResult{
		SenderName: decodeText(root.Get("sender_name")),
		GroupName:  decodeText(root.Get("group_name")),
		PostDate:   decodeText(root.Get("post_date")),
		Content:    decodeText(root.Get("content")),
		Summary:    decodeText(root.Get("summary")),
		Validation: decodeText(root.Get("validation")),
	}
	result.Likes = decodeCount(root.Get("likes"))
	result.Comments = decodeCount(root.Get("comments"))
	result.Shares = decodeCount(root.Get("shares"))
	return result
}

func decodeText(v gjson.Result) string {
	if !v.Exists() {
		return ""
	}
	return common.DecodeUnicodeEscapes(v.String())
}

func decodeCount(v gjson.Result) *int {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	n := int(v.Int())
	return &n
}
