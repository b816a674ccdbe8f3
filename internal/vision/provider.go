package vision

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
)

// NewProvider builds the configured vision provider.
func NewProvider(config common.VisionConfig, logger arbor.ILogger) (interfaces.VisionProvider, error) {
	switch config.Provider {
	case "", "gemini":
		return NewGeminiProvider(config, logger)
	case "anthropic", "claude":
		return NewAnthropicProvider(config, logger)
	default:
		return nil, fmt.Errorf("unknown vision provider: %s", config.Provider)
	}
}
