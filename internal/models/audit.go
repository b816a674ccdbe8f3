package models

// AuditEntry is one JSON line of the run audit log. The repair engine reads
// these back to locate previously captured screenshots by URL.
type AuditEntry struct {
	Timestamp  string  `json:"ts"`
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	URL        string  `json:"url"`
	OK         bool    `json:"ok"`
	Record     *Record `json:"record,omitempty"`
	Screenshot string  `json:"screenshot,omitempty"`
	Skipped    string  `json:"skipped,omitempty"` // "story" or "reel" when skipped in regular mode
	Story      bool    `json:"story,omitempty"`
	Reel       bool    `json:"reel,omitempty"`
	Visual     bool    `json:"visual,omitempty"`
}
