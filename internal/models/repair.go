package models

// RepairField names one backfillable record column.
type RepairField string

const (
	RepairLikes    RepairField = "likes"
	RepairComments RepairField = "comments"
	RepairShares   RepairField = "shares"
	RepairSender   RepairField = "sender"
	RepairDate     RepairField = "date"
	RepairGroup    RepairField = "group"
	RepairContent  RepairField = "content"
)

// RepairFields is the order a full repair walks the columns. Cheap count
// fields run before the fields that usually need a vision pass.
var RepairFields = []RepairField{
	RepairGroup,
	RepairLikes,
	RepairComments,
	RepairShares,
	RepairContent,
	RepairSender,
	RepairDate,
}

// ValidRepairField reports whether f names a known column.
func ValidRepairField(f RepairField) bool {
	for _, known := range RepairFields {
		if known == f {
			return true
		}
	}
	return false
}

// RepairReport summarizes a single-field repair pass.
type RepairReport struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

// FieldRepairReport is one field's outcome inside a full repair.
type FieldRepairReport struct {
	Field   RepairField `json:"field"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Updated int         `json:"updated"`
}

// RepairAllReport is the outcome of a full repair across all fields. When the
// run is cancelled midway, Details holds the fields that completed.
type RepairAllReport struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Details []FieldRepairReport `json:"details"`
}
