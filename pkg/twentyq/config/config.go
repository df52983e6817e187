package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/twentyq/pkg/twentyq/inference/bisect"
	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
	"github.com/cognicore/twentyq/pkg/twentyq/internalerr"
)

// Config is the top-level twentyq configuration file
type Config struct {
	Engine  Engine  `yaml:"engine"`
	Corpus  Corpus  `yaml:"corpus"`
	Store   Store   `yaml:"store"`
	Logging Logging `yaml:"logging"`
}

// Engine holds the inference tuning constants
type Engine struct {
	Threshold     float64 `yaml:"threshold"`
	MinCandidates int     `yaml:"min_candidates"`
	MaxTurns      int     `yaml:"max_turns"`
	InitialRows   int     `yaml:"initial_rows"`
	InitialCols   int     `yaml:"initial_cols"`
	RowGrowth     int     `yaml:"row_growth"`
	ColGrowth     int     `yaml:"col_growth"`
}

// Corpus describes where answers come from and how categories are cleaned
type Corpus struct {
	Sample   string   `yaml:"sample"`
	Prefixes []Prefix `yaml:"prefixes"`
	Ignore   []string `yaml:"ignore"`
}

// Prefix is a category header to strip
type Prefix struct {
	Name        string `yaml:"name"`
	StripDigits bool   `yaml:"strip_digits"`
}

// Store configures the corpus/history database
type Store struct {
	Path string `yaml:"path"`
}

// Logging configures the zap logger
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration
func Default() *Config {
	ec := bisect.DefaultConfig()
	prefixes := make([]Prefix, len(ingest.DefaultPrefixes))
	for i, p := range ingest.DefaultPrefixes {
		prefixes[i] = Prefix{Name: p.Name, StripDigits: p.StripDigits}
	}
	return &Config{
		Engine: Engine{
			Threshold:     ec.Threshold,
			MinCandidates: ec.MinCandidates,
			MaxTurns:      ec.MaxTurns,
			InitialRows:   ec.InitialRows,
			InitialCols:   ec.InitialCols,
			RowGrowth:     ec.RowGrowth,
			ColGrowth:     ec.ColGrowth,
		},
		Corpus: Corpus{
			Sample:   "testdata/animals.tsv",
			Prefixes: prefixes,
		},
		Logging: Logging{Level: "warn"},
	}
}

// Load reads a YAML config file. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.Threshold <= 0 || e.Threshold > 1:
		return fmt.Errorf("engine.threshold %v not in (0,1]: %w", e.Threshold, internalerr.ErrInvalidConfig)
	case e.MinCandidates < 1:
		return fmt.Errorf("engine.min_candidates must be positive: %w", internalerr.ErrInvalidConfig)
	case e.MaxTurns < 1:
		return fmt.Errorf("engine.max_turns must be positive: %w", internalerr.ErrInvalidConfig)
	case e.InitialRows < 1 || e.InitialCols < 1:
		return fmt.Errorf("engine initial capacity must be positive: %w", internalerr.ErrInvalidConfig)
	case e.RowGrowth < 2 || e.ColGrowth < 2:
		return fmt.Errorf("engine growth factors must be at least 2: %w", internalerr.ErrInvalidConfig)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: %w", c.Logging.Level, internalerr.ErrInvalidConfig)
	}
	return nil
}

// EngineConfig converts the engine section for bisect.New
func (c *Config) EngineConfig() bisect.Config {
	return bisect.Config{
		Threshold:     c.Engine.Threshold,
		MinCandidates: c.Engine.MinCandidates,
		MaxTurns:      c.Engine.MaxTurns,
		InitialRows:   c.Engine.InitialRows,
		InitialCols:   c.Engine.InitialCols,
		RowGrowth:     c.Engine.RowGrowth,
		ColGrowth:     c.Engine.ColGrowth,
	}
}

// IgnoreList is a YAML list of categories too broad to ask about
type IgnoreList struct {
	Terms []string `yaml:"terms"`
}

// LoadIgnoreList loads ignored categories from a YAML file
func LoadIgnoreList(path string) (*IgnoreList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var il IgnoreList
	if err := yaml.Unmarshal(data, &il); err != nil {
		return nil, err
	}

	return &il, nil
}

// SaveIgnoreList writes terms to path, merged with any list already
// there. Terms are deduplicated case-insensitively and sorted.
func SaveIgnoreList(path string, terms []string) error {
	existing := &IgnoreList{}
	if _, err := os.Stat(path); err == nil {
		if existing, err = LoadIgnoreList(path); err != nil {
			return err
		}
	}

	seen := make(map[string]struct{})
	var merged []string
	for _, t := range append(existing.Terms, terms...) {
		t = strings.TrimSpace(t)
		key := strings.ToUpper(t)
		if t == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
	}
	sort.Strings(merged)

	buf, err := yaml.Marshal(IgnoreList{Terms: merged})
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
