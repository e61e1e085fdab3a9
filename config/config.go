// Package config loads and validates the engine configuration. Configuration
// invariants are checked here, at startup; per-request code never validates
// deployment data.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hantar/loadplan/infra/mqtt"
)

type Config struct {
	Zones   ZonesConfig     `json:"zones"`
	Catalog CatalogConfig   `json:"catalog"`
	Planner PlannerConfig   `json:"planner"`
	Fleet   mqtt.FeedConfig `json:"fleet"`
	Metrics MetricsConfig   `json:"metrics"`
	Logging LoggingConfig   `json:"logging"`
	Sentry  SentryConfig    `json:"sentry"`
	API     APIConfig       `json:"api"`
	// SnapshotPath points to the JSON snapshot (catalog, orders, fleet,
	// factories) loaded into the store at startup.
	SnapshotPath string `json:"snapshot_path"`
}

// Load reads the file at path (yaml or json by extension), applies LP_
// environment overrides and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. LP_API__ADDR=:9090.
	if err := k.Load(env.Provider("LP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "lp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Catalog.SetDefaults()
	cfg.Planner.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Zones.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
