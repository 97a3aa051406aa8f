package types

import "time"

// BrandEntry maps a brand key to its canonical storefront URL
type BrandEntry struct {
	Name string `mapstructure:"name" json:"name"`
	Site string `mapstructure:"site" json:"site"`
}

// SearchResult is one organic result returned by the search provider
type SearchResult struct {
	Link     string `json:"link"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// FetchedPage holds the rendered markup of a page and the URL it came from
type FetchedPage struct {
	URL  string
	HTML string
}

// Dimension is a named product option (Size, Color...) with its ordered values
type Dimension struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Variant is a concrete variant described by a vendor inline script
type Variant struct {
	Title   string   `json:"title"`
	SKU     string   `json:"sku"`
	Price   string   `json:"price"`
	Barcode string   `json:"barcode"`
	Image   string   `json:"image"`
	Options []string `json:"options"`
}

// TitleFailure records why a product title contributed no records
type TitleFailure struct {
	Title string `json:"title"`
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

// Error returns the failure message
func (f TitleFailure) Error() string {
	if f.Err == nil {
		return f.Stage
	}
	return f.Stage + ": " + f.Err.Error()
}

// BatchResult is the outcome of running the pipeline over a list of titles
type BatchResult struct {
	RunID     string
	Processed int
	Records   []ProductRecord
	Failures  []TitleFailure
}

// ListingRule describes a category/listing URL that must be resolved to its
// first product page before extraction
type ListingRule struct {
	HostContains string `mapstructure:"host_contains"`
	PathPattern  string `mapstructure:"path_pattern"`
	LinkSelector string `mapstructure:"link_selector"`
}

// Config holds the configuration for the feed builder
type Config struct {
	RequestDelay       time.Duration `mapstructure:"request_delay"`
	MaxRetries         int           `mapstructure:"max_retries"`
	Timeout            time.Duration `mapstructure:"timeout"`
	UseHeadlessBrowser bool          `mapstructure:"use_headless_browser"`
	UserAgent          string        `mapstructure:"user_agent"`

	// Browser
	BrowserBackend string        `mapstructure:"browser_backend"` // "chromedp" or "playwright"
	BrowserWorkers int           `mapstructure:"browser_workers"`
	LoadShare      float64       `mapstructure:"load_share"`
	ScrollSettle   time.Duration `mapstructure:"scroll_settle"`
	MaxScrolls     int           `mapstructure:"max_scrolls"`
	FinalSettle    time.Duration `mapstructure:"final_settle"`

	// Search provider
	SearchURL     string        `mapstructure:"search_url"`
	SearchAPIKey  string        `mapstructure:"search_api_key"`
	SearchResults int           `mapstructure:"search_results"`
	CacheType     string        `mapstructure:"cache_type"` // "none", "memory" or "redis"
	RedisURL      string        `mapstructure:"redis_url"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	// Language model
	LLMBaseURL   string        `mapstructure:"llm_base_url"`
	LLMAPIKey    string        `mapstructure:"llm_api_key"`
	LLMModel     string        `mapstructure:"llm_model"`
	LLMChunkSize int           `mapstructure:"llm_chunk_size"`
	LLMDelay     time.Duration `mapstructure:"llm_delay"`
	Enrich       bool          `mapstructure:"enrich"`

	// Brand resolution
	FuzzyThreshold  float64      `mapstructure:"fuzzy_threshold"`
	CosineThreshold float64      `mapstructure:"cosine_threshold"`
	Brands          []BrandEntry `mapstructure:"brands"`

	// Extraction
	BodyTextLimit int           `mapstructure:"body_text_limit"`
	ListingRules  []ListingRule `mapstructure:"listing_rules"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       1 * time.Second,
		MaxRetries:         3,
		Timeout:            40 * time.Second,
		UseHeadlessBrowser: true,
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

		BrowserBackend: "chromedp",
		BrowserWorkers: 1,
		LoadShare:      0.6,
		ScrollSettle:   1500 * time.Millisecond,
		MaxScrolls:     10,
		FinalSettle:    3 * time.Second,

		SearchURL:     "https://google.serper.dev/search",
		SearchResults: 3,
		CacheType:     "memory",
		CacheTTL:      24 * time.Hour,

		LLMBaseURL:   "https://api.groq.com/openai/v1",
		LLMModel:     "llama-3.1-8b-instant",
		LLMChunkSize: 4000,
		LLMDelay:     1 * time.Second,

		FuzzyThreshold:  75,
		CosineThreshold: 0.70,

		BodyTextLimit: 2000,
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
