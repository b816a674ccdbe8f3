package models

import "time"

// Record is the structured result of extracting one post.
type Record struct {
	URL            string    `json:"url" badgerhold:"key"`
	SenderName     string    `json:"sender_name"`
	GroupName      string    `json:"group_name"`
	PostDate       string    `json:"post_date"`
	Content        string    `json:"content"`
	Summary        string    `json:"summary"`
	Likes          int       `json:"likes"`
	Comments       int       `json:"comments"`
	Shares         int       `json:"shares"`
	Validation     string    `json:"validation,omitempty"`
	ScreenshotPath string    `json:"screenshot_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LinkEntry is one input row: a post URL with optional operator-supplied
// name and date hints.
type LinkEntry struct {
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name,omitempty"`
	Date string `json:"date,omitempty"`
}

// Stage identifies which extraction tier produced a field value.
type Stage string

const (
	StageStructural  Stage = "structural"
	StageDOM         Stage = "dom"
	StageVisibleText Stage = "visible_text"
	StageVision      Stage = "vision"
)

// PartialMetadata holds whatever the page miner recovered, with per-field
// provenance. Absent fields stay zero-valued.
type PartialMetadata struct {
	SenderName string
	GroupName  string
	PostDate   string
	Content    string
	Likes      int
	Comments   int
	Shares     int
	Provenance map[string]Stage
}

// NewPartialMetadata returns empty metadata ready for marking.
func NewPartialMetadata() *PartialMetadata {
	return &PartialMetadata{Provenance: map[string]Stage{}}
}

// Mark records which tier produced a field.
func (p *PartialMetadata) Mark(field string, stage Stage) {
	p.Provenance[field] = stage
}

// HasStats reports whether any engagement count was recovered.
func (p *PartialMetadata) HasStats() bool {
	return p.Likes > 0 || p.Comments > 0 || p.Shares > 0
}

// BatchResult tallies one pipeline run.
type BatchResult struct {
	Processed int
	Succeeded int
	Failed    []FailedLink
	Skipped   int
	Duration  time.Duration
}

// FailedLink records a URL the pipeline could not extract, with the reason.
type FailedLink struct {
	URL    string
	Reason string
}
