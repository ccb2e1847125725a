// Package config loads the analyzer's YAML configuration: language id,
// solver iteration multiplier, built-in API data path, and reserved-
// namespace/ignore glob patterns (SPEC_FULL.md §10-12). Grounded on the
// teacher's own dependency on github.com/goccy/go-yaml (there, for
// snapshot-config serialization); reused here for the analyzer's own
// config document instead of inventing a flag-only configuration scheme.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/match"
)

// Config is the analyzer's top-level configuration document.
type Config struct {
	LanguageID string `yaml:"languageId"`

	// IterationMultiplier scales internal/dataflow's per-node solver
	// budget (internal/dataflow.Context.BudgetMultiplier); 0 means "use
	// the solver's own default".
	IterationMultiplier int `yaml:"iterationMultiplier"`

	// APIDataPath points at a JSON document in internal/apidata.Load's
	// shape; empty means "use internal/apidata.Default()".
	APIDataPath string `yaml:"apiDataPath"`

	// ReservedNamespaces lists glob patterns (tidwall/match syntax) of
	// namespace names the analyzer should treat as already-declared even
	// when no `namespace` block for them appears in the analyzed file set
	// (SPEC_FULL.md §12 "reserved-namespace... patterns in config").
	ReservedNamespaces []string `yaml:"reservedNamespaces"`

	// Ignore lists glob patterns of file paths internal/workspace should
	// skip during discovery.
	Ignore []string `yaml:"ignore"`
}

// Default returns the zero-configuration defaults: no reserved namespace
// or ignore patterns, solver and API data left to their own defaults.
func Default() Config {
	return Config{LanguageID: "gsc"}
}

// Load parses a YAML document into a Config seeded with Default's values,
// so a document that only overrides one field leaves the rest intact.
func Load(doc []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and parses path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data)
}

// IsReservedNamespace reports whether name matches any configured
// reserved-namespace glob.
func (c Config) IsReservedNamespace(name string) bool {
	return matchAny(c.ReservedNamespaces, name)
}

// IsIgnored reports whether path matches any configured ignore glob.
func (c Config) IsIgnored(path string) bool {
	return matchAny(c.Ignore, path)
}

func matchAny(patterns []string, s string) bool {
	for _, p := range patterns {
		if match.Match(s, p) {
			return true
		}
	}
	return false
}
