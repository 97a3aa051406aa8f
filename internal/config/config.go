package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"shopify-feed/adapters"
	"shopify-feed/brand"
	"shopify-feed/internal/types"
)

// EnvPrefix prefixes every environment override, e.g. FEED_TIMEOUT=60s
const EnvPrefix = "FEED"

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing precedence. With an empty path, feed.yaml is
// looked up in the working directory and ./config; a missing file is fine
// then, but an explicit path must exist.
func Load(path string) (*types.Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("feed")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	setDefaults(v, types.DefaultConfig())

	// Provider keys also honour their conventional variable names
	if err := v.BindEnv("search_api_key", EnvPrefix+"_SEARCH_API_KEY", "SERPER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind search key: %w", err)
	}
	if err := v.BindEnv("llm_api_key", EnvPrefix+"_LLM_API_KEY", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind model key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config types.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(config.Brands) == 0 {
		config.Brands = append([]types.BrandEntry(nil), brand.DefaultBrands...)
	}
	if len(config.ListingRules) == 0 {
		config.ListingRules = append([]types.ListingRule(nil), adapters.DefaultListingRules...)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper, d *types.Config) {
	v.SetDefault("request_delay", d.RequestDelay)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("use_headless_browser", d.UseHeadlessBrowser)
	v.SetDefault("user_agent", d.UserAgent)

	v.SetDefault("browser_backend", d.BrowserBackend)
	v.SetDefault("browser_workers", d.BrowserWorkers)
	v.SetDefault("load_share", d.LoadShare)
	v.SetDefault("scroll_settle", d.ScrollSettle)
	v.SetDefault("max_scrolls", d.MaxScrolls)
	v.SetDefault("final_settle", d.FinalSettle)

	v.SetDefault("search_url", d.SearchURL)
	v.SetDefault("search_api_key", d.SearchAPIKey)
	v.SetDefault("search_results", d.SearchResults)
	v.SetDefault("cache_type", d.CacheType)
	v.SetDefault("redis_url", d.RedisURL)
	v.SetDefault("cache_ttl", d.CacheTTL)

	v.SetDefault("llm_base_url", d.LLMBaseURL)
	v.SetDefault("llm_api_key", d.LLMAPIKey)
	v.SetDefault("llm_model", d.LLMModel)
	v.SetDefault("llm_chunk_size", d.LLMChunkSize)
	v.SetDefault("llm_delay", d.LLMDelay)
	v.SetDefault("enrich", d.Enrich)

	v.SetDefault("fuzzy_threshold", d.FuzzyThreshold)
	v.SetDefault("cosine_threshold", d.CosineThreshold)

	v.SetDefault("body_text_limit", d.BodyTextLimit)
}

// Validate checks the settings the pipeline cannot run without
func Validate(config *types.Config) error {
	switch config.BrowserBackend {
	case "chromedp", "playwright":
	default:
		return fmt.Errorf("browser backend must be 'chromedp' or 'playwright', got: %s", config.BrowserBackend)
	}

	switch config.CacheType {
	case "none", "memory":
	case "redis":
		if config.RedisURL == "" {
			return fmt.Errorf("redis URL is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'none', 'memory' or 'redis', got: %s", config.CacheType)
	}

	if config.LoadShare <= 0 || config.LoadShare >= 1 {
		return fmt.Errorf("load share must be between 0 and 1, got: %v", config.LoadShare)
	}
	if config.BrowserWorkers < 1 {
		return fmt.Errorf("browser workers must be at least 1, got: %d", config.BrowserWorkers)
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", config.Timeout)
	}
	if config.SearchResults < 1 {
		return fmt.Errorf("search results must be at least 1, got: %d", config.SearchResults)
	}
	return nil
}
