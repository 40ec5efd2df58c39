package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Catalog contains configuration for the external media catalog API.
type Catalog struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
	// RateLimitMS is the minimum spacing between catalog requests, a
	// courtesy to the upstream service rather than a correctness need.
	RateLimitMS int `toml:"rate_limit_ms"`
	// CacheTTLMinutes bounds how long search responses are reused.
	CacheTTLMinutes int `toml:"cache_ttl_minutes"`
}

// LLM contains connection settings for the generative text service.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Resolver contains timing and concurrency settings for the resolution
// pipeline.
type Resolver struct {
	// LookupTimeoutSeconds bounds each external call; on timeout the current
	// stage is treated as a miss and the chain advances.
	LookupTimeoutSeconds int `toml:"lookup_timeout_seconds"`
	// MaxConcurrent caps in-flight resolutions inside a batch.
	MaxConcurrent int `toml:"max_concurrent"`
}

// Scoring contains the match scorer's tuning constants. The point values and
// thresholds are product decisions preserved as configuration, not derived.
type Scoring struct {
	BaseScore            int     `toml:"base_score"`
	MaxScore             int     `toml:"max_score"`
	LanguageBonus        int     `toml:"language_bonus"`
	HighRatingThreshold  float64 `toml:"high_rating_threshold"`
	HighRatingBonus      int     `toml:"high_rating_bonus"`
	GoodRatingThreshold  float64 `toml:"good_rating_threshold"`
	GoodRatingBonus      int     `toml:"good_rating_bonus"`
	GenreBonusPerMatch   int     `toml:"genre_bonus_per_match"`
	GenreBonusCap        int     `toml:"genre_bonus_cap"`
	RecentYearWindow     int     `toml:"recent_year_window"`
	RecentYearBonus      int     `toml:"recent_year_bonus"`
	ModernYearWindow     int     `toml:"modern_year_window"`
	ModernYearBonus      int     `toml:"modern_year_bonus"`
	AcclaimedVoteCount   int64   `toml:"acclaimed_vote_count"`
	AcclaimedVoteBonus   int     `toml:"acclaimed_vote_bonus"`
	PopularVoteCount     int64   `toml:"popular_vote_count"`
	PopularVoteBonus     int     `toml:"popular_vote_bonus"`
	PersonalizationBonus int     `toml:"personalization_bonus"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Catalog: external media catalog API credentials and rate limiting
//   - LLM: generative text service connection settings
//   - Resolver: per-call timeouts and batch concurrency
//   - Scoring: match percent tuning constants
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Catalog  Catalog  `toml:"catalog"`
	LLM      LLM      `toml:"llm"`
	Resolver Resolver `toml:"resolver"`
	Scoring  Scoring  `toml:"scoring"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/marquee/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the store and log writers need.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the annotated sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
