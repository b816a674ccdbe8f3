package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig `toml:"logging"`
	Browser     BrowserConfig `toml:"browser"`
	Scrape      ScrapeConfig  `toml:"scrape"`
	Capture     CaptureConfig `toml:"capture"`
	Vision      VisionConfig  `toml:"vision"`
	Storage     StorageConfig `toml:"storage"`
	Output      OutputConfig  `toml:"output"`
	Events      EventsConfig  `toml:"events"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// BrowserConfig controls session acquisition. Executable and profile paths
// feed the ordered launch-configuration list; empty values fall back to
// chromedp auto-detection.
type BrowserConfig struct {
	Executable  string `toml:"executable"`    // explicit browser binary, empty = auto-detect
	UserDataDir string `toml:"user_data_dir"` // persistent profile directory, created if missing
	ProfileDir  string `toml:"profile_dir"`   // profile name inside the user data dir
	Headless    bool   `toml:"headless"`
	NavTimeout  string `toml:"nav_timeout"` // per-navigation budget, e.g. "60s"
	ReadyWait   string `toml:"ready_wait"`  // per-candidate readiness selector budget
	UserAgent   string `toml:"user_agent"`
}

// NavTimeoutDuration parses the navigation budget, defaulting to 60s.
func (b BrowserConfig) NavTimeoutDuration() time.Duration {
	return parseDuration(b.NavTimeout, 60*time.Second)
}

// ReadyWaitDuration parses the readiness budget, defaulting to 15s.
func (b BrowserConfig) ReadyWaitDuration() time.Duration {
	return parseDuration(b.ReadyWait, 15*time.Second)
}

type ScrapeConfig struct {
	LinksFile        string `toml:"links_file"`
	VisualMode       bool   `toml:"visual_mode"`
	BetweenPosts     string `toml:"between_posts"` // inter-post delay, e.g. "4s"
	MinContentLength int    `toml:"min_content_length"`
	RulesFile        string `toml:"rules_file"` // optional YAML host-rules overrides
}

// BetweenPostsDuration parses the inter-post delay, defaulting to 4s.
func (s ScrapeConfig) BetweenPostsDuration() time.Duration {
	return parseDuration(s.BetweenPosts, 4*time.Second)
}

type CaptureConfig struct {
	ScreenshotDir string `toml:"screenshot_dir"`
	MaxHeight     int64  `toml:"max_height"` // clip bound for captured posts, px
	JPEGQuality   int    `toml:"jpeg_quality"`
}

// VisionConfig selects and configures the vision-language provider.
type VisionConfig struct {
	Provider        string `toml:"provider"` // "gemini" (default) or "claude"
	Model           string `toml:"model"`
	GeminiAPIKey    string `toml:"gemini_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
	MaxAttempts     int    `toml:"max_attempts"`
	Timeout         string `toml:"timeout"` // per-call budget, e.g. "2m"
}

// TimeoutDuration parses the per-call budget, defaulting to 2m.
func (v VisionConfig) TimeoutDuration() time.Duration {
	return parseDuration(v.Timeout, 2*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type EventsConfig struct {
	Port int `toml:"port"` // progress websocket port, 0 = disabled
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Browser: BrowserConfig{
			UserDataDir: "./chrome-profile",
			ProfileDir:  "Default",
			Headless:    true,
			NavTimeout:  "60s",
			ReadyWait:   "15s",
		},
		Scrape: ScrapeConfig{
			LinksFile:        "links.json",
			VisualMode:       true,
			BetweenPosts:     "4s",
			MinContentLength: 50,
		},
		Capture: CaptureConfig{
			ScreenshotDir: "./screenshots",
			MaxHeight:     4000,
			JPEGQuality:   80,
		},
		Vision: VisionConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash-001",
			MaxAttempts: 3,
			Timeout:     "2m",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{Path: "./data/records"},
		},
		Output: OutputConfig{
			Dir: "./out",
		},
		Events: EventsConfig{Port: 0},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env.
// An empty path loads defaults plus env overrides.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks configuration invariants before the pipeline starts.
func (c *Config) Validate() error {
	if c.Vision.MaxAttempts <= 0 {
		return fmt.Errorf("vision.max_attempts must be positive, got %d", c.Vision.MaxAttempts)
	}
	if c.Capture.MaxHeight <= 0 {
		return fmt.Errorf("capture.max_height must be positive, got %d", c.Capture.MaxHeight)
	}
	switch c.Vision.Provider {
	case "gemini", "claude", "anthropic":
	default:
		return fmt.Errorf("vision.provider must be %q or %q, got %q", "gemini", "claude", c.Vision.Provider)
	}
	return validator.New().Struct(c)
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SPECTO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Vision.GeminiAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Vision.AnthropicAPIKey = v
	}
	if v := os.Getenv("SPECTO_VISION_PROVIDER"); v != "" {
		config.Vision.Provider = v
	}
	if v := os.Getenv("CHROME_EXE"); v != "" {
		config.Browser.Executable = v
	}
	if v := os.Getenv("USER_DATA_DIR"); v != "" {
		config.Browser.UserDataDir = v
	}
	if v := os.Getenv("PROFILE_DIR"); v != "" {
		config.Browser.ProfileDir = v
	}
	if v := os.Getenv("LINKS_FILE"); v != "" {
		config.Scrape.LinksFile = v
	}
	if v := os.Getenv("VISUAL_MODE"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			config.Scrape.VisualMode = parsed
		}
	}
}

// EnsureDirs creates the directories the pipeline writes to.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Output.Dir, c.Capture.ScreenshotDir, filepath.Dir(c.Storage.Badger.Path)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
