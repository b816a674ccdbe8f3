package scrape

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HostRule declares how one host's pages are waited on and captured. The
// readiness selectors are tried in order with short per-candidate timeouts;
// SettleDelay runs after the first match (or after basic DOM readiness when
// none match).
type HostRule struct {
	Readiness       []string
	SettleDelay     time.Duration
	FallbackDelay   time.Duration
	CaptureSelector string
}

// Rules maps host substrings to their rule. Lookup picks the first rule whose
// key is contained in the hostname; "default" is the catch-all.
type Rules struct {
	Hosts map[string]HostRule
}

// rulesFile mirrors the YAML shape; durations arrive as strings ("3s").
type rulesFile struct {
	Hosts map[string]struct {
		Readiness       []string `yaml:"readiness"`
		SettleDelay     string   `yaml:"settle_delay"`
		FallbackDelay   string   `yaml:"fallback_delay"`
		CaptureSelector string   `yaml:"capture_selector"`
	} `yaml:"hosts"`
}

// DefaultRules returns the built-in host rules.
func DefaultRules() *Rules {
	return &Rules{
		Hosts: map[string]HostRule{
			"facebook.com": {
				Readiness: []string{
					`[role="dialog"][aria-modal="true"]`, // modal post view, most reliable
					`[role="main"] article`,
					`[role="article"]`,
					`article`,
					`div[data-pagelet]`,
				},
				SettleDelay:     3 * time.Second,
				FallbackDelay:   6 * time.Second,
				CaptureSelector: `div[role="main"] > div > div > div`,
			},
			"instagram.com": {
				Readiness:     []string{`article`, `main`, `[role="dialog"]`},
				SettleDelay:   5 * time.Second,
				FallbackDelay: 5 * time.Second,
			},
			"tiktok.com": {
				Readiness:     []string{`[data-e2e="video-desc"]`, `h1`, `h2`},
				SettleDelay:   1200 * time.Millisecond,
				FallbackDelay: 1200 * time.Millisecond,
			},
			"default": {
				Readiness:     []string{`main`, `article`, `body`},
				SettleDelay:   800 * time.Millisecond,
				FallbackDelay: 800 * time.Millisecond,
			},
		},
	}
}

// LoadRules returns the defaults merged with overrides from a YAML file.
// An empty path returns the defaults unchanged.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	var overrides rulesFile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	for host, raw := range overrides.Hosts {
		rule := HostRule{
			Readiness:       raw.Readiness,
			CaptureSelector: raw.CaptureSelector,
		}
		if rule.SettleDelay, err = parseRuleDelay(raw.SettleDelay, host, "settle_delay"); err != nil {
			return nil, err
		}
		if rule.FallbackDelay, err = parseRuleDelay(raw.FallbackDelay, host, "fallback_delay"); err != nil {
			return nil, err
		}
		rules.Hosts[host] = rule
	}
	return rules, nil
}

func parseRuleDelay(s, host, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s for host %s: %w", field, host, err)
	}
	return d, nil
}

// ForHost returns the rule matching the host, falling back to "default".
func (r *Rules) ForHost(host string) HostRule {
	host = strings.ToLower(host)
	for key, rule := range r.Hosts {
		if key != "default" && strings.Contains(host, key) {
			return rule
		}
	}
	return r.Hosts["default"]
}
