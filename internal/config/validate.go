package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("catalog.api_key is required. Set CATALOG_API_KEY env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.MaxConcurrent > 64 {
		return errors.New("resolver.max_concurrent must be 64 or lower")
	}
	return nil
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if s.BaseScore <= 0 || s.MaxScore <= 0 {
		return errors.New("scoring.base_score and scoring.max_score must be positive")
	}
	if s.MaxScore >= 100 {
		return errors.New("scoring.max_score must stay below 100; no result is presented as a perfect match")
	}
	if s.BaseScore > s.MaxScore {
		return errors.New("scoring.base_score must not exceed scoring.max_score")
	}
	if s.GenreBonusCap < s.GenreBonusPerMatch {
		return errors.New("scoring.genre_bonus_cap must be at least genre_bonus_per_match")
	}
	if s.GoodRatingThreshold > s.HighRatingThreshold {
		return errors.New("scoring.good_rating_threshold must not exceed high_rating_threshold")
	}
	if s.PopularVoteCount > s.AcclaimedVoteCount {
		return errors.New("scoring.popular_vote_count must not exceed acclaimed_vote_count")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
