// Command inspect fetches one product page and prints what the extractor
// sees on it, for diagnosing storefronts that yield empty records.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"shopify-feed/adapters"
	"shopify-feed/extractor"
	"shopify-feed/internal/config"
	"shopify-feed/internal/types"
	"shopify-feed/utils"
)

type report struct {
	URL        string            `json:"url"`
	Resolved   string            `json:"resolved_url"`
	Fields     map[string]string `json:"fields"`
	Dimensions []types.Dimension `json:"dimensions"`
	Variants   []types.Variant   `json:"variants"`
	Records    int               `json:"records"`
	Links      linkStats         `json:"links"`
}

type linkStats struct {
	Total       int      `json:"total"`
	Products    int      `json:"products"`
	Collections int      `json:"collections"`
	Sample      []string `json:"sample"`
}

func main() {
	_ = godotenv.Load()

	var (
		urlFlag    = flag.String("url", "", "Product page URL")
		configFlag = flag.String("config", "", "Config file path")
		httpOnly   = flag.Bool("http-only", false, "Fetch with plain HTTP instead of the headless browser")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("--url flag is required")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if *httpOnly {
		cfg.UseHeadlessBrowser = false
	}

	httpClient := utils.NewHTTPClient(cfg, logger)
	defer httpClient.Close()

	var fetcher utils.PageFetcher = httpClient
	if cfg.UseHeadlessBrowser {
		browser, err := utils.NewBrowserClient(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to start browser backend: %v", err)
		}
		defer browser.Close()
		fetcher = browser
	}

	ctx := context.Background()
	base := adapters.NewBaseAdapter(cfg, logger)
	link := adapters.NewListingResolver(base, fetcher, cfg.ListingRules).Resolve(ctx, *urlFlag)

	html, err := fetcher.Fetch(ctx, link)
	if err != nil {
		logger.Fatalf("Failed to fetch %s: %v", link, err)
	}

	ex := adapters.NewExtractor(cfg, logger).Extract(types.FetchedPage{URL: link, HTML: html})
	records := extractor.ExpandVariants(ex.Record, ex.Dimensions, ex.Variants)

	out := report{
		URL:        *urlFlag,
		Resolved:   link,
		Fields:     map[string]string{},
		Dimensions: ex.Dimensions,
		Variants:   ex.Variants,
		Records:    len(records),
	}
	for i, value := range ex.Record.Row() {
		if value != "" {
			out.Fields[types.Header()[i]] = value
		}
	}
	if doc, err := base.ParseHTML(html); err == nil {
		out.Links = countLinks(doc)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatalf("Failed to encode report: %v", err)
	}
}

func countLinks(doc *goquery.Document) linkStats {
	stats := linkStats{
		Total:       doc.Find("a").Length(),
		Products:    doc.Find("a[href*='/products/']").Length(),
		Collections: doc.Find("a[href*='collections']").Length(),
	}
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if href != "" && len(href) < 100 {
			text := strings.Join(strings.Fields(s.Text()), " ")
			stats.Sample = append(stats.Sample, fmt.Sprintf("%s (%s)", href, text))
		}
		return len(stats.Sample) < 10
	})
	return stats
}
