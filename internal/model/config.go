package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the full runtime configuration, assembled from defaults,
// the YAML config file, FISKAL_* environment variables, and flags.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Fallback    FallbackConfig    `yaml:"fallback" mapstructure:"fallback"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	GapLog      GapLogConfig      `yaml:"gap_log" mapstructure:"gap_log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
}

// CatalogConfig selects the dataset catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Extra catalog file merged over the builtin snapshot
}

// FallbackConfig controls the statistics-office client used when the
// catalog has no match.
type FallbackConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig controls dataset response caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallelism.
type ConcurrencyConfig struct {
	ClaimWorkers int `yaml:"claim_workers" mapstructure:"claim_workers"` // Parallel claims within one document
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Parallel documents in batch mode
}

// GapLogConfig locates the unsupported-claim store.
type GapLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file; ":memory:" keeps the log ephemeral
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LLMConfig configures the optional extraction and narrative adapters.
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // "openai", "anthropic", "ollama", or "" (disabled)
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL       string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictSources bool   `yaml:"strict_sources" mapstructure:"strict_sources"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".fiskal")

	return &Config{
		Catalog: CatalogConfig{},
		Fallback: FallbackConfig{
			Enabled:           true,
			BaseURL:           "https://vdb.czso.cz/vdbvo2",
			UserAgent:         "fiskal/0.2 (+https://github.com/hradek/fiskal)",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ClaimWorkers: 4,
			Workers:      runtime.NumCPU(),
		},
		GapLog: GapLogConfig{
			Path: filepath.Join(base, "gaps.db"),
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:      "",
			Timeout:       30,
			StrictSources: true,
			MaxTokens:     1500,
		},
	}
}
