package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/specto/internal/models"
)

var linkValidator = validator.New()

// LoadLinks reads the input links file: a JSON array of entries with a URL
// and optional operator-supplied name and date hints. Entries that fail
// validation abort the load so a bad file is caught before the browser
// starts.
func LoadLinks(path string) ([]models.LinkEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read links file %s: %w", path, err)
	}

	var links []models.LinkEntry
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("failed to parse links file %s: %w", path, err)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("links file %s contains no entries", path)
	}

	for i, link := range links {
		if err := linkValidator.Struct(link); err != nil {
			return nil, fmt.Errorf("invalid link at index %d (%s): %w", i, link.URL, err)
		}
	}
	return links, nil
}
