// Package config loads per-check severity overrides and a disabled-check
// list from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/riscvlint/rva/diagnostic"
)

// Config holds the lint pipeline's configurable knobs: a floor severity,
// per-check severity overrides, and a disabled-check list.
type Config struct {
	MinSeverity diagnostic.Severity
	Disabled    map[diagnostic.Code]bool
	Overrides   map[diagnostic.Code]diagnostic.Severity
}

type rawConfig struct {
	MinSeverity string            `yaml:"min_severity"`
	Disabled    []string          `yaml:"disabled_checks"`
	Overrides   map[string]string `yaml:"severity_overrides"`
}

// Default returns the out-of-the-box configuration: nothing disabled, no
// overrides, floor severity "hint" (report everything).
func Default() *Config {
	return &Config{MinSeverity: diagnostic.SeverityHint, Disabled: map[diagnostic.Code]bool{}, Overrides: map[diagnostic.Code]diagnostic.Severity{}}
}

// Load reads and resolves a YAML config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var raw rawConfig
	if err := yaml.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return resolve(raw)
}

func resolve(raw rawConfig) (*Config, error) {
	c := Default()

	if raw.MinSeverity != "" {
		sev, ok := diagnostic.ParseSeverity(raw.MinSeverity)
		if !ok {
			return nil, fmt.Errorf("config: unrecognized min_severity %q", raw.MinSeverity)
		}
		c.MinSeverity = sev
	}
	for _, code := range raw.Disabled {
		c.Disabled[diagnostic.Code(code)] = true
	}
	for code, sevName := range raw.Overrides {
		sev, ok := diagnostic.ParseSeverity(sevName)
		if !ok {
			return nil, fmt.Errorf("config: unrecognized severity %q for %q", sevName, code)
		}
		c.Overrides[diagnostic.Code(code)] = sev
	}
	return c, nil
}

// Apply filters out disabled codes, rewrites severity per Overrides, and
// then filters out anything below MinSeverity, in that order.
func (c *Config) Apply(diags []*diagnostic.Diagnostic) []*diagnostic.Diagnostic {
	out := make([]*diagnostic.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if c.Disabled[d.Code] {
			continue
		}
		if sev, ok := c.Overrides[d.Code]; ok {
			d.Severity = sev
		}
		if d.Severity > c.MinSeverity {
			continue
		}
		out = append(out, d)
	}
	return out
}
