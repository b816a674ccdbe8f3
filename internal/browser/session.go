package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
)

// launchConfig is one attemptable browser configuration. Acquire walks the
// configs from most specific to most generic until one produces a browser
// that answers a probe navigation.
type launchConfig struct {
	Name        string
	Executable  string
	UserDataDir string
	ProfileDir  string
}

// LaunchError aggregates the failure of every attempted launch configuration.
type LaunchError struct {
	Attempts []AttemptError
}

// AttemptError records a single failed launch attempt.
type AttemptError struct {
	Config string
	Err    error
}

func (e *LaunchError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Config, a.Err))
	}
	return fmt.Sprintf("all browser launch configurations failed: %s", strings.Join(parts, "; "))
}

// Session is a live browser instance. All page tabs derive from its context.
type Session struct {
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	config          string
	mu              sync.Mutex
	closed          bool
}

// Context returns the browser context new tabs should derive from.
func (s *Session) Context() context.Context { return s.browserCtx }

// ConfigName names the launch configuration that succeeded.
func (s *Session) ConfigName() string { return s.config }

// Close tears the browser down. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocatorCancel != nil {
		s.allocatorCancel()
	}
}

// Manager launches browser sessions with progressive configuration fallback.
type Manager struct {
	config common.BrowserConfig
	logger arbor.ILogger
}

// NewManager creates a browser session manager.
func NewManager(config common.BrowserConfig, logger arbor.ILogger) *Manager {
	return &Manager{config: config, logger: logger}
}

// launchConfigs builds the ordered fallback chain: persistent profile with
// the configured executable, then default profile with the executable, then
// chromedp defaults.
func (m *Manager) launchConfigs() []launchConfig {
	var configs []launchConfig
	if m.config.Executable != "" && m.config.UserDataDir != "" {
		configs = append(configs, launchConfig{
			Name:        "persistent-profile",
			Executable:  m.config.Executable,
			UserDataDir: m.config.UserDataDir,
			ProfileDir:  m.config.ProfileDir,
		})
	}
	if m.config.Executable != "" {
		configs = append(configs, launchConfig{
			Name:       "default-profile",
			Executable: m.config.Executable,
		})
	}
	configs = append(configs, launchConfig{Name: "defaults"})
	return configs
}

// Acquire launches a browser, walking the fallback chain until one
// configuration yields a responsive instance. The returned error is a
// *LaunchError carrying every attempt when nothing works.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	launchErr := &LaunchError{}

	for _, cfg := range m.launchConfigs() {
		session, err := m.launch(ctx, cfg)
		if err != nil {
			m.logger.Warn().
				Err(err).
				Str("config", cfg.Name).
				Msg("Browser launch configuration failed")
			launchErr.Attempts = append(launchErr.Attempts, AttemptError{Config: cfg.Name, Err: err})
			continue
		}
		m.logger.Info().
			Str("config", cfg.Name).
			Bool("headless", m.config.Headless).
			Msg("Browser session established")
		return session, nil
	}

	return nil, launchErr
}

func (m *Manager) launch(ctx context.Context, cfg launchConfig) (*Session, error) {
	startTime := time.Now()

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("start-maximized", true),
	)
	if m.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(m.config.UserAgent))
	}
	if cfg.Executable != "" {
		opts = append(opts, chromedp.ExecPath(cfg.Executable))
	}
	if cfg.UserDataDir != "" {
		if err := os.MkdirAll(cfg.UserDataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create user data dir %s: %w", cfg.UserDataDir, err)
		}
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
		if cfg.ProfileDir != "" {
			opts = append(opts, chromedp.Flag("profile-directory", cfg.ProfileDir))
		}
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	probeCtx, probeCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("browser failed startup probe: %w", err)
	}

	m.logger.Debug().
		Str("config", cfg.Name).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser instance started")

	return &Session{
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
		config:          cfg.Name,
	}, nil
}
