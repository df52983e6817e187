package config

import (
	"fmt"

	"github.com/cognicore/twentyq/pkg/twentyq/inference/bisect"
	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	ConfigPath string
	IgnorePath string
}

// Components holds all loaded configuration components
type Components struct {
	Config     *Config
	Engine     bisect.Config
	Normalizer *ingest.Normalizer
	Tokenizer  *ingest.Tokenizer
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	ignore := append([]string(nil), cfg.Corpus.Ignore...)
	if l.IgnorePath != "" {
		il, err := LoadIgnoreList(l.IgnorePath)
		if err != nil {
			return nil, fmt.Errorf("load ignore list: %w", err)
		}
		ignore = append(ignore, il.Terms...)
	}

	prefixes := make([]ingest.Prefix, len(cfg.Corpus.Prefixes))
	for i, p := range cfg.Corpus.Prefixes {
		prefixes[i] = ingest.Prefix{Name: p.Name, StripDigits: p.StripDigits}
	}

	return &Components{
		Config:     cfg,
		Engine:     cfg.EngineConfig(),
		Normalizer: ingest.NewNormalizer(prefixes, ignore),
		Tokenizer:  ingest.NewTokenizer(),
	}, nil
}
