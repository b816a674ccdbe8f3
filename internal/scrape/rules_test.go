package scrape

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRulesMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
hosts:
  facebook.com:
    readiness: ['[role="main"]']
    settle_delay: 1s
    fallback_delay: 2s
    capture_selector: 'div.post'
  example.net:
    readiness: ['section']
    settle_delay: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	fb := rules.ForHost("www.facebook.com")
	assert.Equal(t, []string{`[role="main"]`}, fb.Readiness)
	assert.Equal(t, time.Second, fb.SettleDelay)
	assert.Equal(t, "div.post", fb.CaptureSelector)

	custom := rules.ForHost("example.net")
	assert.Equal(t, 500*time.Millisecond, custom.SettleDelay)

	// Hosts not mentioned in the file keep their defaults.
	tik := rules.ForHost("www.tiktok.com")
	assert.NotEmpty(t, tik.Readiness)
}

func TestLoadRulesEmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.NotEmpty(t, rules.Hosts["facebook.com"].CaptureSelector)
}

func TestLoadRulesBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hosts:\n  x.com:\n    settle_delay: soon\n"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
