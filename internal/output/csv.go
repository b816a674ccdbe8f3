package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/models"
)

var csvHeader = []string{
	"url", "sender_name", "group_name", "post_date", "content",
	"summary", "likes", "comments", "shares", "validation", "screenshot",
}

// CSVSink appends records to a CSV file. A fresh file gets a UTF-8 BOM so
// spreadsheet applications detect Hebrew content correctly.
type CSVSink struct {
	path   string
	logger arbor.ILogger

	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink creates a sink writing to path. The file is opened on first
// append.
func NewCSVSink(path string, logger arbor.ILogger) *CSVSink {
	return &CSVSink{path: path, logger: logger}
}

// Append writes one record row, flushing so a crashed run loses nothing.
func (s *CSVSink) Append(ctx context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	row := []string{
		record.URL,
		record.SenderName,
		record.GroupName,
		record.PostDate,
		record.Content,
		record.Summary,
		strconv.Itoa(record.Likes),
		strconv.Itoa(record.Comments),
		strconv.Itoa(record.Shares),
		record.Validation,
		record.ScreenshotPath,
	}
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row for %s: %w", record.URL, err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) open() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	info, statErr := os.Stat(s.path)
	fresh := statErr != nil || info.Size() == 0

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open CSV output %s: %w", s.path, err)
	}
	s.file = file
	s.writer = csv.NewWriter(file)

	if fresh {
		if _, err := file.WriteString("\ufeff"); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
		if err := s.writer.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		s.writer.Flush()
	}
	s.logger.Debug().Str("path", s.path).Bool("fresh", fresh).Msg("CSV output opened")
	return s.writer.Error()
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
