package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/meeting-digest/internal/chunking"
	"github.com/nguyentantai21042004/meeting-digest/internal/retry"
	"github.com/nguyentantai21042004/meeting-digest/internal/tokens"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

type Config struct {
	Provider    ProviderConfig    `yaml:"provider"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Retry       retry.Config      `yaml:"retry"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Output      OutputConfig      `yaml:"output"`
}

type ProviderConfig struct {
	Name    string   `yaml:"name"`
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type ChunkingConfig struct {
	MaxTokensPerChunk  int                       `yaml:"max_tokens_per_chunk"`
	Strategy           string                    `yaml:"strategy"`
	SafetyMargin       float64                   `yaml:"safety_margin"`
	ResponseReserve    int                       `yaml:"response_reserve"`
	PromptReserve      int                       `yaml:"prompt_reserve"`
	ContextLimits      map[string]map[string]int `yaml:"context_limits"`
	CJKCharsPerToken   float64                   `yaml:"cjk_chars_per_token"`
	LatinCharsPerToken float64                   `yaml:"latin_chars_per_token"`
	SpeakingRate       int                       `yaml:"speaking_rate"`
	PauseThreshold     time.Duration             `yaml:"pause_threshold"`
	SemanticMarkers    []string                  `yaml:"semantic_markers"`
	MinFill            float64                   `yaml:"min_fill"`
	OverlapSections    int                       `yaml:"overlap_sections"`
	OverlapDuration    time.Duration             `yaml:"overlap_duration"`
	DisableOverlap     bool                      `yaml:"disable_overlap"`
	RequireSpeakers    bool                      `yaml:"require_speakers"`
}

type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type OutputConfig struct {
	Language string `yaml:"language"`
}

// Environment overrides applied by Load.
const (
	EnvAPIKeys  = "GEMINI_API_KEYS"
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvLogLevel = "DIGEST_LOG_LEVEL"
)

// Default returns a validated config with the standard data/ layout, for
// commands run without a config file.
func Default() *Config {
	cfg := &Config{
		Paths: PathsConfig{
			Input:  "data/inbox",
			Output: "data/digests",
		},
	}
	cfg.applyEnv()
	_ = cfg.Validate()
	return cfg
}

// Load reads a YAML config file, applies environment overrides and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKeys); v != "" {
		c.Provider.APIKeys = splitList(v)
	} else if v := os.Getenv(EnvAPIKey); v != "" && len(c.Provider.APIKeys) == 0 {
		c.Provider.APIKeys = []string{strings.TrimSpace(v)}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Chunking.MaxTokensPerChunk < 0 {
		return fmt.Errorf("chunking.max_tokens_per_chunk must not be negative")
	}
	if s := c.Chunking.Strategy; s != "" && !transcript.Strategy(s).Valid() {
		return fmt.Errorf("chunking.strategy %q is not one of speaker_turns, time_intervals, semantic_breaks, hybrid", s)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must not be negative")
	}

	if c.Provider.Name == "" {
		c.Provider.Name = "gemini"
	}
	if c.Provider.Model == "" {
		c.Provider.Model = "gemini-2.5-flash"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Retry == (retry.Config{}) {
		c.Retry = retry.DefaultConfig()
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Output.Language == "" {
		c.Output.Language = "en"
	}

	return nil
}

// ChunkingEngine converts the YAML section into the chunking engine config.
func (c ChunkingConfig) ChunkingEngine() chunking.Config {
	return chunking.Config{
		Estimator: tokens.Estimator{
			CJKCharsPerToken:   c.CJKCharsPerToken,
			LatinCharsPerToken: c.LatinCharsPerToken,
		},
		SafetyMargin:    c.SafetyMargin,
		ResponseReserve: c.ResponseReserve,
		PromptReserve:   c.PromptReserve,
		ContextLimits:   c.ContextLimits,
		SpeakingRate:    c.SpeakingRate,
		PauseThreshold:  c.PauseThreshold,
		SemanticMarkers: c.SemanticMarkers,
		MinFill:         c.MinFill,
		OverlapSections: c.OverlapSections,
		OverlapDuration: c.OverlapDuration,
		DisableOverlap:  c.DisableOverlap,
	}
}
