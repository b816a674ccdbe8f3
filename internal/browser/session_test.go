package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
)

func TestLaunchConfigOrdering(t *testing.T) {
	m := NewManager(common.BrowserConfig{
		Executable:  "/usr/bin/chrome",
		UserDataDir: "/tmp/profile",
		ProfileDir:  "Profile 1",
	}, arbor.NewLogger())

	configs := m.launchConfigs()
	names := make([]string, len(configs))
	for i, c := range configs {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"persistent-profile", "default-profile", "defaults"}, names)
	assert.Equal(t, "Profile 1", configs[0].ProfileDir)
	assert.Empty(t, configs[1].UserDataDir)
}

func TestLaunchConfigOrderingWithoutProfile(t *testing.T) {
	m := NewManager(common.BrowserConfig{Executable: "/usr/bin/chrome"}, arbor.NewLogger())

	configs := m.launchConfigs()
	assert.Len(t, configs, 2)
	assert.Equal(t, "default-profile", configs[0].Name)
	assert.Equal(t, "defaults", configs[1].Name)
}

func TestLaunchConfigDefaultsOnly(t *testing.T) {
	m := NewManager(common.BrowserConfig{}, arbor.NewLogger())

	configs := m.launchConfigs()
	assert.Len(t, configs, 1)
	assert.Equal(t, "defaults", configs[0].Name)
}

func TestLaunchErrorAggregatesAttempts(t *testing.T) {
	err := &LaunchError{Attempts: []AttemptError{
		{Config: "persistent-profile", Err: errors.New("profile locked")},
		{Config: "defaults", Err: errors.New("exec not found")},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "persistent-profile: profile locked")
	assert.Contains(t, msg, "defaults: exec not found")
}
