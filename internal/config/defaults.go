package config

const (
	defaultDataDir            = "~/.local/share/marquee"
	defaultLogDir             = "~/.local/share/marquee/logs"
	defaultCatalogBaseURL     = "https://api.themoviedb.org/3"
	defaultCatalogLanguage    = "en-US"
	defaultCatalogRateLimitMS = 250
	defaultCatalogCacheTTLMin = 10
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMReferer         = "https://github.com/marquee-app/marquee"
	defaultLLMTitle           = "Marquee Resolver"
	defaultLLMTimeoutSeconds  = 30
	defaultLookupTimeoutSecs  = 10
	defaultMaxConcurrent      = 6
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:         defaultCatalogBaseURL,
			Language:        defaultCatalogLanguage,
			RateLimitMS:     defaultCatalogRateLimitMS,
			CacheTTLMinutes: defaultCatalogCacheTTLMin,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Resolver: Resolver{
			LookupTimeoutSeconds: defaultLookupTimeoutSecs,
			MaxConcurrent:        defaultMaxConcurrent,
		},
		Scoring: DefaultScoring(),
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultScoring returns the shipped scorer tuning. The vote-count and
// rating thresholds are empirical constants carried over from production
// tuning; treat them as product decisions.
func DefaultScoring() Scoring {
	return Scoring{
		BaseScore:            70,
		MaxScore:             95,
		LanguageBonus:        15,
		HighRatingThreshold:  8.0,
		HighRatingBonus:      10,
		GoodRatingThreshold:  7.0,
		GoodRatingBonus:      5,
		GenreBonusPerMatch:   10,
		GenreBonusCap:        20,
		RecentYearWindow:     1,
		RecentYearBonus:      8,
		ModernYearWindow:     4,
		ModernYearBonus:      5,
		AcclaimedVoteCount:   5000,
		AcclaimedVoteBonus:   12,
		PopularVoteCount:     2000,
		PopularVoteBonus:     7,
		PersonalizationBonus: 10,
	}
}
