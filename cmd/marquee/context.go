package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/match"
	"marquee/internal/pipeline"
	"marquee/internal/resolve"
	"marquee/internal/services/llm"
	"marquee/internal/store"
)

// commandContext lazily wires the shared dependencies behind the CLI
// commands: configuration, logging, the store, and the pipeline.
type commandContext struct {
	configFlag *string

	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPathFlag() string {
	if c.configFlag == nil {
		return ""
	}
	return *c.configFlag
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(c.configPathFlag())
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = path
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "marquee.log"))
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	c.logger = logger
	return logger, nil
}

// buildPipeline wires a full pipeline. The caller owns closing the returned
// store.
func (c *commandContext) buildPipeline() (*pipeline.Pipeline, *resolve.Enricher, *store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	catalogClient, err := catalog.New(
		cfg.Catalog.APIKey,
		cfg.Catalog.BaseURL,
		cfg.Catalog.Language,
		catalog.WithRateLimit(time.Duration(cfg.Catalog.RateLimitMS)*time.Millisecond),
		catalog.WithCacheTTL(time.Duration(cfg.Catalog.CacheTTLMinutes)*time.Minute),
	)
	if err != nil {
		_ = st.Close()
		return nil, nil, nil, err
	}

	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	lookupTimeout := time.Duration(cfg.Resolver.LookupTimeoutSeconds) * time.Second
	resolver := resolve.NewResolver(st, catalogClient, completer, logger, lookupTimeout)
	enricher := resolve.NewEnricher(st, completer, logger, lookupTimeout)
	scorer := match.NewScorer(cfg.Scoring)

	p := pipeline.New(resolver, enricher, scorer, completer, logger, cfg.Resolver.MaxConcurrent)
	return p, enricher, st, nil
}
