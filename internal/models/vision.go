package models

// ValidationQuotaExhausted marks records produced without vision analysis
// because the provider's quota ran out mid-run.
const ValidationQuotaExhausted = "Quota Exhausted"

// VisionResult is the parsed response of a vision-language model. Count
// fields are pointers so a missing field is distinguishable from an explicit
// zero.
type VisionResult struct {
	SenderName string `json:"sender_name"`
	GroupName  string `json:"group_name"`
	PostDate   string `json:"post_date"`
	Content    string `json:"content"`
	Summary    string `json:"summary"`
	Likes      *int   `json:"likes"`
	Comments   *int   `json:"comments"`
	Shares     *int   `json:"shares"`
	Validation string `json:"validation"`
}

// QuotaFallback builds the sentinel result used when every vision attempt
// hit quota limits: heuristic values carry the record and the validation
// field flags the gap.
func QuotaFallback(fallbackName string, heuristic *PartialMetadata) *VisionResult {
	result := &VisionResult{
		SenderName: fallbackName,
		Validation: ValidationQuotaExhausted,
	}
	if heuristic != nil {
		if heuristic.SenderName != "" {
			result.SenderName = heuristic.SenderName
		}
		result.GroupName = heuristic.GroupName
		result.PostDate = heuristic.PostDate
		result.Content = heuristic.Content
		result.Likes = intPtr(heuristic.Likes)
		result.Comments = intPtr(heuristic.Comments)
		result.Shares = intPtr(heuristic.Shares)
	}
	return result
}

func intPtr(n int) *int { return &n }

// LikesOr returns the model's likes count, or fallback when absent.
func (r *VisionResult) LikesOr(fallback int) int {
	if r.Likes == nil {
		return fallback
	}
	return *r.Likes
}

// CommentsOr returns the model's comments count, or fallback when absent.
func (r *VisionResult) CommentsOr(fallback int) int {
	if r.Comments == nil {
		return fallback
	}
	return *r.Comments
}

// SharesOr returns the model's shares count, or fallback when absent.
func (r *VisionResult) SharesOr(fallback int) int {
	if r.Shares == nil {
		return fallback
	}
	return *r.Shares
}
