package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"shopify-feed/adapters"
	"shopify-feed/brand"
	"shopify-feed/extractor"
	"shopify-feed/feed"
	"shopify-feed/internal/config"
	"shopify-feed/llm"
	"shopify-feed/search"
	"shopify-feed/utils"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		configFlag  = flag.String("config", "", "Config file path (default: ./feed.yaml if present)")
		inputFlag   = flag.String("input", "", "Input file with product titles (CSV Title column or one per line)")
		titlesFlag  = flag.String("titles", "", "Comma-separated list of product titles")
		outputFlag  = flag.String("output", "output/products.csv", "Output CSV path")
		backendFlag = flag.String("backend", "", "Browser backend (chromedp, playwright)")
		workersFlag = flag.Int("workers", 0, "Number of browser workers")
		timeoutFlag = flag.Duration("timeout", 0, "Navigation timeout")
		httpOnly    = flag.Bool("http-only", false, "Use HTTP requests only (disable headless browser)")
		enrichFlag  = flag.Bool("enrich", false, "Complete records with the language model")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *inputFlag == "" && *titlesFlag == "" {
		log.Fatal("Either --input or --titles flag is required")
	}

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override file and environment settings only when given
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.BrowserBackend = *backendFlag
		case "workers":
			cfg.BrowserWorkers = *workersFlag
		case "timeout":
			cfg.Timeout = *timeoutFlag
		case "http-only":
			cfg.UseHeadlessBrowser = !*httpOnly
		case "enrich":
			cfg.Enrich = *enrichFlag
		}
	})
	if err := config.Validate(cfg); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.SearchAPIKey == "" {
		logger.Fatal("Search API key is required (set SERPER_API_KEY or FEED_SEARCH_API_KEY)")
	}

	var titles []string
	if *inputFlag != "" {
		titles, err = feed.ReadTitles(*inputFlag)
		if err != nil {
			logger.Fatalf("Failed to read titles: %v", err)
		}
	}
	titles = append(titles, feed.SplitTitles(*titlesFlag)...)
	if len(titles) == 0 {
		logger.Fatal("No product titles to process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpClient := utils.NewHTTPClient(cfg, logger)
	defer httpClient.Close()

	// Page fetching: browser pool, or plain HTTP for static storefronts
	var fetcher utils.PageFetcher = httpClient
	if cfg.UseHeadlessBrowser {
		browser, err := utils.NewBrowserClient(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to start browser backend: %v", err)
		}
		defer browser.Close()

		pool := utils.NewFetchPool(browser, cfg.BrowserWorkers)
		defer pool.Close()
		fetcher = pool
	}

	var searcher search.Searcher = search.NewClient(httpClient, cfg, logger)
	switch cfg.CacheType {
	case "memory":
		searcher = search.NewCachedSearcher(searcher, search.NewMemoryCache(), cfg.CacheTTL, logger)
	case "redis":
		cache, err := search.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatalf("Failed to open search cache: %v", err)
		}
		defer cache.Close()
		searcher = search.NewCachedSearcher(searcher, cache, cfg.CacheTTL, logger)
	}

	table := brand.NewTable(cfg.Brands)
	services := extractor.Services{
		Scopes:    table,
		Search:    searcher,
		Fetcher:   fetcher,
		Listings:  adapters.NewListingResolver(adapters.NewBaseAdapter(cfg, logger), fetcher, cfg.ListingRules),
		Extractor: adapters.NewExtractor(cfg, logger),
	}

	if cfg.LLMAPIKey != "" {
		model := llm.NewClient(httpClient, cfg, logger)
		services.Brands = brand.NewResolver(table, model, cfg, logger)
		if cfg.Enrich {
			services.Enricher = extractor.NewEnricher(model, cfg, logger)
		}
	} else {
		logger.Warn("No language model key set; brand classification fallback and enrichment are disabled")
		services.Brands = brand.NewResolver(table, nil, cfg, logger)
	}

	startTime := time.Now()
	logger.Infof("Starting feed build for %d titles", len(titles))

	result, err := extractor.NewBatch(services, cfg, logger).Run(ctx, titles)
	if err != nil {
		logger.Warnf("Run interrupted, writing partial results: %v", err)
	}

	if err := feed.WriteCSV(result.Records, *outputFlag); err != nil {
		logger.Fatalf("Failed to write output file: %v", err)
	}

	for _, f := range result.Failures {
		logger.Warnf("Failed: %q (%s): %v", f.Title, f.Stage, f.Err)
	}
	logger.Infof("Feed build completed in %v", time.Since(startTime))
	logger.Info(extractor.Summary(result, *outputFlag))
}
