package repair

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/pipeline"
)

// LiveExtractor re-opens a post and mines it. The returned path is a fresh
// screenshot when one was captured, empty otherwise.
type LiveExtractor interface {
	Extract(ctx context.Context, url string) (*models.PartialMetadata, string, error)
}

// FieldAnalyzer runs a vision pass over a screenshot file for one field.
type FieldAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string, field models.RepairField) (string, error)
}

// Engine backfills missing record fields. Each missing cell walks a strategy
// cascade: live page extraction, then vision over the screenshot logged for
// the URL, then vision over a freshly captured one. A recovered value only
// ever fills an empty cell; nothing existing is overwritten, and an empty
// recovery writes nothing.
type Engine struct {
	dataset   interfaces.Dataset
	audit     interfaces.AuditReader
	extractor LiveExtractor
	analyzer  FieldAnalyzer
	logger    arbor.ILogger
}

// NewEngine creates a repair engine.
func NewEngine(dataset interfaces.Dataset, audit interfaces.AuditReader, extractor LiveExtractor, analyzer FieldAnalyzer, logger arbor.ILogger) *Engine {
	return &Engine{
		dataset:   dataset,
		audit:     audit,
		extractor: extractor,
		analyzer:  analyzer,
		logger:    logger,
	}
}

// RepairField backfills one field across the whole dataset. Updates are
// flushed in a single batch at the end of the pass; cancellation mid-pass
// flushes what was recovered so far before returning.
func (e *Engine) RepairField(ctx context.Context, field models.RepairField) *models.RepairReport {
	if !models.ValidRepairField(field) {
		return &models.RepairReport{Message: fmt.Sprintf("unknown field: %s", field)}
	}

	rows, err := e.dataset.Rows(ctx)
	if err != nil {
		return &models.RepairReport{Message: fmt.Sprintf("failed to load dataset: %v", err)}
	}

	var updates []interfaces.CellUpdate
	missing := 0
	for _, row := range rows {
		if !cellMissing(field, row.Values[field]) {
			continue
		}
		missing++

		if ctx.Err() != nil {
			return e.flush(ctx, field, updates, fmt.Sprintf("cancelled after %d of %d rows", len(updates), missing))
		}

		value := e.recover(ctx, row.URL, field)
		if value == "" {
			e.logger.Debug().Str("url", row.URL).Str("field", string(field)).Msg("No value recovered for row")
			continue
		}
		updates = append(updates, interfaces.CellUpdate{Row: row.Index, Field: field, Value: value})
	}

	return e.flush(ctx, field, updates, fmt.Sprintf("repaired %d of %d missing cells", len(updates), missing))
}

func (e *Engine) flush(ctx context.Context, field models.RepairField, updates []interfaces.CellUpdate, message string) *models.RepairReport {
	if len(updates) > 0 {
		// Flush on a detached context so cancellation does not drop recovered values.
		if err := e.dataset.BatchUpdate(context.WithoutCancel(ctx), updates); err != nil {
			return &models.RepairReport{Message: fmt.Sprintf("failed to apply updates: %v", err)}
		}
	}
	e.logger.Info().Str("field", string(field)).Int("updated", len(updates)).Msg("Field repair pass finished")
	return &models.RepairReport{Success: true, Message: message, Updated: len(updates)}
}

// RepairAllFields runs every field pass in the standard order. A cancelled
// run reports the passes that completed; finished passes stay applied.
func (e *Engine) RepairAllFields(ctx context.Context) *models.RepairAllReport {
	report := &models.RepairAllReport{}
	for _, field := range models.RepairFields {
		if ctx.Err() != nil {
			report.Message = fmt.Sprintf("cancelled after %d of %d fields", len(report.Details), len(models.RepairFields))
			return report
		}

		fieldReport := e.RepairField(ctx, field)
		report.Details = append(report.Details, models.FieldRepairReport{
			Field:   field,
			Success: fieldReport.Success,
			Message: fieldReport.Message,
			Updated: fieldReport.Updated,
		})
	}

	report.Success = true
	report.Message = fmt.Sprintf("all %d field passes completed", len(models.RepairFields))
	return report
}

// recover walks the strategy cascade for one cell. Returns "" when nothing
// usable was found.
func (e *Engine) recover(ctx context.Context, url string, field models.RepairField) string {
	var meta *models.PartialMetadata
	freshShot := ""

	if e.extractor != nil {
		m, shot, err := e.extractor.Extract(ctx, url)
		if err != nil {
			e.logger.Debug().Err(err).Str("url", url).Msg("Live extraction failed")
		} else {
			meta = m
			freshShot = shot
		}
	}
	if value := fieldFromMetadata(meta, field); value != "" {
		return value
	}

	if e.analyzer != nil && e.audit != nil {
		if entry, err := e.audit.FindByURL(url); err == nil && entry != nil && entry.Screenshot != "" {
			if _, err := os.Stat(entry.Screenshot); err == nil {
				if value := e.analyzeShot(ctx, entry.Screenshot, url, field); value != "" {
					return value
				}
			}
		}
	}

	if e.analyzer != nil && freshShot != "" {
		return e.analyzeShot(ctx, freshShot, url, field)
	}
	return ""
}

func (e *Engine) analyzeShot(ctx context.Context, path, url string, field models.RepairField) string {
	value, err := e.analyzer.AnalyzeFile(ctx, path, field)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", url).Str("path", path).Msg("Vision repair pass failed")
		return ""
	}
	return normalizeValue(field, value)
}

// cellMissing decides whether a cell needs repair: empty text, or a zero
// count. A populated cell is never touched even if it looks wrong.
func cellMissing(field models.RepairField, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	switch field {
	case models.RepairLikes, models.RepairComments, models.RepairShares:
		n, err := strconv.Atoi(value)
		return err == nil && n == 0
	case models.RepairContent:
		return value == pipeline.NoContentMarker
	}
	return false
}

func fieldFromMetadata(meta *models.PartialMetadata, field models.RepairField) string {
	if meta == nil {
		return ""
	}
	switch field {
	case models.RepairSender:
		return meta.SenderName
	case models.RepairGroup:
		return meta.GroupName
	case models.RepairDate:
		return normalizeValue(field, meta.PostDate)
	case models.RepairContent:
		return meta.Content
	case models.RepairLikes:
		return countValue(meta.Likes)
	case models.RepairComments:
		return countValue(meta.Comments)
	case models.RepairShares:
		return countValue(meta.Shares)
	}
	return ""
}

// countValue renders a count, with zero mapping to "missing" so it never
// lands in a cell.
func countValue(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func normalizeValue(field models.RepairField, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return ""
	}
	if field == models.RepairDate {
		return pipeline.NormalizeDate(value)
	}
	return value
}
