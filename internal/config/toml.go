// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/testlens/internal/llm"
	"github.com/verte-zerg/testlens/internal/model"
)

// FileConfig represents the TOML configuration file. Unset values are nil so
// defaults and flags can tell them apart from explicit zeros.
type FileConfig struct {
	Report  ReportConfig  `toml:"report"`
	Buckets BucketsConfig `toml:"buckets"`
	LLM     LLMConfig     `toml:"llm"`
	Batch   BatchConfig   `toml:"batch"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

// ReportConfig maps report rendering settings.
type ReportConfig struct {
	Format    *string `toml:"format"`
	Width     *int    `toml:"width"`
	Color     *bool   `toml:"color"`
	Narrative *bool   `toml:"narrative"`
}

// BucketsConfig maps the time bucket upper bounds in seconds.
type BucketsConfig struct {
	Bounds []float64 `toml:"bounds"`
}

// LLMConfig maps feedback provider settings. API keys are read from the
// environment only.
type LLMConfig struct {
	Provider       *string `toml:"provider"`
	GeminiModel    *string `toml:"gemini-model"`
	OpenAIModel    *string `toml:"openai-model"`
	AnthropicModel *string `toml:"anthropic-model"`
	BaseURL        *string `toml:"base-url"`
	Timeout        *string `toml:"timeout"`
	MaxAttempts    *int    `toml:"max-attempts"`
}

// BatchConfig maps batch processing settings.
type BatchConfig struct {
	Workers *int `toml:"workers"`
}

// StoreConfig maps report history settings.
type StoreConfig struct {
	Path *string `toml:"path"`
	Save *bool   `toml:"save"`
}

// ServerConfig maps HTTP API settings.
type ServerConfig struct {
	Addr           *string  `toml:"addr"`
	AllowedOrigins []string `toml:"allowed-origins"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// BucketScheme returns the configured scheme, or the default one when no
// bounds are set.
func (c BucketsConfig) BucketScheme() (model.BucketScheme, error) {
	if len(c.Bounds) == 0 {
		return model.DefaultBucketScheme(), nil
	}
	scheme, err := model.NewBucketScheme(c.Bounds...)
	if err != nil {
		return model.BucketScheme{}, fmt.Errorf("invalid [buckets] bounds: %w", err)
	}
	return scheme, nil
}

// Apply copies the set values onto cfg.
func (c LLMConfig) Apply(cfg *llm.Config) error {
	if c.Provider != nil {
		cfg.Provider = *c.Provider
	}
	if c.GeminiModel != nil {
		cfg.Gemini.Model = *c.GeminiModel
	}
	if c.OpenAIModel != nil {
		cfg.OpenAI.Model = *c.OpenAIModel
	}
	if c.AnthropicModel != nil {
		cfg.Anthropic.Model = *c.AnthropicModel
	}
	if c.BaseURL != nil {
		cfg.OpenAI.BaseURL = *c.BaseURL
	}
	if c.Timeout != nil {
		d, err := time.ParseDuration(*c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid [llm] timeout %q: %w", *c.Timeout, err)
		}
		cfg.Timeout = d
	}
	if c.MaxAttempts != nil {
		if *c.MaxAttempts < 1 {
			return fmt.Errorf("[llm] max-attempts must be >= 1")
		}
		cfg.Retry.MaxAttempts = *c.MaxAttempts
	}
	return nil
}
