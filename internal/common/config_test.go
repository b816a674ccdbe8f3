package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.True(t, config.Scrape.VisualMode)
	assert.Equal(t, int64(4000), config.Capture.MaxHeight)
	assert.Equal(t, 3, config.Vision.MaxAttempts)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specto.toml")
	content := `
environment = "production"

[scrape]
visual_mode = false
between_posts = "10s"

[vision]
provider = "claude"
model = "claude-sonnet-4-5"

[browser]
headless = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "production", config.Environment)
	assert.False(t, config.Scrape.VisualMode)
	assert.Equal(t, 10*time.Second, config.Scrape.BetweenPostsDuration())
	assert.Equal(t, "claude", config.Vision.Provider)
	assert.Equal(t, int64(4000), config.Capture.MaxHeight, "untouched sections keep defaults")
}

func TestLoadFromFileEnvOverride(t *testing.T) {
	t.Setenv("SPECTO_VISION_PROVIDER", "claude")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("VISUAL_MODE", "false")

	config, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, "claude", config.Vision.Provider)
	assert.Equal(t, "test-key", config.Vision.GeminiAPIKey)
	assert.False(t, config.Scrape.VisualMode)
}

func TestValidateRejectsBadProvider(t *testing.T) {
	config := DefaultConfig()
	config.Vision.Provider = "llama"
	assert.Error(t, config.Validate())
}

func TestValidateRejectsNonPositiveAttempts(t *testing.T) {
	config := DefaultConfig()
	config.Vision.MaxAttempts = 0
	assert.Error(t, config.Validate())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
