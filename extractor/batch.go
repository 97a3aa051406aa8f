package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"shopify-feed/adapters"
	"shopify-feed/internal/types"
	"shopify-feed/search"
	"shopify-feed/utils"
)

// Failure stages recorded on TitleFailure
const (
	StageSearch = "search"
	StageFetch  = "fetch"
	StageEnrich = "enrich"
)

// BrandResolver maps a product title to a known brand
type BrandResolver interface {
	Resolve(ctx context.Context, title string) (string, bool)
}

// SiteScoper returns the site: operand for a brand
type SiteScoper interface {
	SiteScope(name string) string
}

// LinkResolver rewrites a search hit into the product page to fetch
type LinkResolver interface {
	Resolve(ctx context.Context, link string) string
}

// PageExtractor turns fetched markup into a record and its options
type PageExtractor interface {
	Extract(page types.FetchedPage) adapters.Extraction
}

// RecordEnricher post-processes the accumulated records
type RecordEnricher interface {
	Enrich(ctx context.Context, records []types.ProductRecord) ([]types.ProductRecord, error)
}

// Services are the collaborators a batch run uses. Listings and Enricher
// are optional.
type Services struct {
	Brands    BrandResolver
	Scopes    SiteScoper
	Search    search.Searcher
	Fetcher   utils.PageFetcher
	Listings  LinkResolver
	Extractor PageExtractor
	Enricher  RecordEnricher
}

// Batch runs the per-title pipeline over a list of titles
type Batch struct {
	services Services
	config   *types.Config
	logger   types.Logger
}

// NewBatch creates a batch orchestrator
func NewBatch(services Services, config *types.Config, logger types.Logger) *Batch {
	return &Batch{
		services: services,
		config:   config,
		logger:   logger,
	}
}

// Run processes titles in input order. A failing title is recorded and
// contributes no records; only cancellation of ctx stops the run, in which
// case the partial result is returned with ctx's error.
func (b *Batch) Run(ctx context.Context, titles []string) (*types.BatchResult, error) {
	startTime := time.Now()
	result := &types.BatchResult{RunID: uuid.NewString()}
	b.logger.Infof("Starting run %s over %d titles", result.RunID, len(titles))

	for i, raw := range titles {
		title := strings.TrimSpace(raw)
		if title == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		titleStartTime := time.Now()
		result.Processed++
		b.logger.Infof("[%s] Processing title %d/%d: %s", result.RunID, i+1, len(titles), title)

		records, failure := b.processTitle(ctx, title)
		if failure != nil {
			if isCancellation(failure.Err) && ctx.Err() != nil {
				return result, ctx.Err()
			}
			b.logger.Warnf("[%s] Title %q failed at %s: %v", result.RunID, title, failure.Stage, failure.Err)
			result.Failures = append(result.Failures, *failure)
			continue
		}

		result.Records = append(result.Records, records...)
		b.logger.Debugf("[%s] Title %q produced %d records in %v", result.RunID, title, len(records), time.Since(titleStartTime))
	}

	if b.services.Enricher != nil && len(result.Records) > 0 {
		enriched, err := b.services.Enricher.Enrich(ctx, result.Records)
		if err != nil {
			if isCancellation(err) && ctx.Err() != nil {
				return result, ctx.Err()
			}
			b.logger.Warnf("[%s] Enrichment failed, keeping extracted records: %v", result.RunID, err)
			result.Failures = append(result.Failures, types.TitleFailure{Stage: StageEnrich, Err: err})
		} else {
			result.Records = enriched
		}
	}

	b.logger.Infof("[%s] Run completed in %v: %d titles, %d records, %d failures",
		result.RunID, time.Since(startTime), result.Processed, len(result.Records), len(result.Failures))
	return result, nil
}

func (b *Batch) processTitle(ctx context.Context, title string) ([]types.ProductRecord, *types.TitleFailure) {
	fail := func(stage string, err error) ([]types.ProductRecord, *types.TitleFailure) {
		return nil, &types.TitleFailure{Title: title, Stage: stage, Err: err}
	}

	brandName, ok := b.services.Brands.Resolve(ctx, title)
	scope := ""
	if ok {
		scope = b.services.Scopes.SiteScope(brandName)
		b.logger.Debugf("Resolved brand %s for %q", brandName, title)
	} else {
		b.logger.Infof("%v for %q, searching unscoped", types.ErrNoBrand, title)
	}

	results, err := b.services.Search.Search(ctx, search.Query(title, scope), b.config.SearchResults)
	if err != nil {
		return fail(StageSearch, err)
	}
	link, found := search.FirstProductLink(results)
	if !found {
		return fail(StageSearch, types.ErrNoSearchResults)
	}

	if b.services.Listings != nil {
		link = b.services.Listings.Resolve(ctx, link)
	}

	html, err := b.services.Fetcher.Fetch(ctx, link)
	if err != nil {
		return fail(StageFetch, err)
	}

	ex := b.services.Extractor.Extract(types.FetchedPage{URL: link, HTML: html})
	if ok && ex.Record.Vendor == "" {
		ex.Record.Vendor = brandName
	}
	if ex.Record.Title == "" && len(ex.Variants) == 0 {
		b.logger.Warnf("Page %s yielded no product fields for %q", link, title)
	}

	return ExpandVariants(ex.Record, ex.Dimensions, ex.Variants), nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// FailedTitles counts the titles that contributed no records. Run-level
// failures such as enrichment carry no title and are not counted.
func FailedTitles(result *types.BatchResult) int {
	n := 0
	for _, f := range result.Failures {
		if f.Title != "" {
			n++
		}
	}
	return n
}

// Summary formats the completion line of a run
func Summary(result *types.BatchResult, path string) string {
	return fmt.Sprintf("Titles processed: %d, records: %d, failed: %d, output: %s",
		result.Processed, len(result.Records), FailedTitles(result), path)
}
