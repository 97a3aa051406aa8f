package extractor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopify-feed/adapters"
	"shopify-feed/brand"
	"shopify-feed/internal/types"
)

type stubBrands map[string]string

func (s stubBrands) Resolve(ctx context.Context, title string) (string, bool) {
	name, ok := s[title]
	return name, ok
}

type stubSearch struct {
	results map[string][]types.SearchResult
	err     error
	queries []string
}

func (s *stubSearch) Search(ctx context.Context, query string, num int) ([]types.SearchResult, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type stubFetcher struct {
	pages map[string]string
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: no page %s", types.ErrFetch, url)
	}
	return html, nil
}

type stubEnricher struct {
	err   error
	calls int
}

func (e *stubEnricher) Enrich(ctx context.Context, records []types.ProductRecord) ([]types.ProductRecord, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([]types.ProductRecord, len(records))
	for i, r := range records {
		r.Status = "active"
		out[i] = r
	}
	return out, nil
}

const sgPage = `<html><head><meta property="og:title" content="SG RP 17"></head><body>
<h1>SG RP 17 English Willow Cricket Bat</h1><p>Grade 1 willow.</p>
<select name="options[Size]"><option>SH</option><option>LH</option></select></body></html>`

func newTestBatch(searcher *stubSearch, fetcher *stubFetcher, enricher RecordEnricher) *Batch {
	config := types.DefaultConfig()
	logger := logrus.New()
	services := Services{
		Brands:    stubBrands{"SG RP 17 English Willow Cricket Bat": "SG"},
		Scopes:    brand.NewTable(brand.DefaultBrands),
		Search:    searcher,
		Fetcher:   fetcher,
		Extractor: adapters.NewExtractor(config, logger),
	}
	if enricher != nil {
		services.Enricher = enricher
	}
	return NewBatch(services, config, logger)
}

func TestBatch_Run_HappyPath(t *testing.T) {
	searcher := &stubSearch{results: map[string][]types.SearchResult{
		"SG RP 17 English Willow Cricket Bat site:shop.teamsg.in": {
			{Link: "https://www.youtube.com/watch?v=rp17"},
			{Link: "https://shop.teamsg.in/products/rp-17"},
		},
	}}
	fetcher := &stubFetcher{pages: map[string]string{"https://shop.teamsg.in/products/rp-17": sgPage}}

	result, err := newTestBatch(searcher, fetcher, nil).Run(context.Background(), []string{"SG RP 17 English Willow Cricket Bat", "  "})

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Failures)
	require.Len(t, result.Records, 2)

	rec := result.Records[0]
	assert.Equal(t, "SG RP 17 English Willow Cricket Bat", rec.Title)
	assert.Equal(t, "SG", rec.Vendor)
	assert.Equal(t, "Size", rec.Option1Name)
	assert.Equal(t, "SH", rec.Option1Value)
	assert.Equal(t, "LH", result.Records[1].Option1Value)
	assert.Equal(t, "https://shop.teamsg.in/products/rp-17", rec.SourceURL)
}

func TestBatch_Run_NoSearchResultsIsolated(t *testing.T) {
	searcher := &stubSearch{results: map[string][]types.SearchResult{
		"SG RP 17 English Willow Cricket Bat site:shop.teamsg.in": {{Link: "https://shop.teamsg.in/products/rp-17"}},
	}}
	fetcher := &stubFetcher{pages: map[string]string{"https://shop.teamsg.in/products/rp-17": sgPage}}

	result, err := newTestBatch(searcher, fetcher, nil).Run(context.Background(), []string{"Unknown thing", "SG RP 17 English Willow Cricket Bat"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Unknown thing", result.Failures[0].Title)
	assert.Equal(t, StageSearch, result.Failures[0].Stage)
	assert.True(t, errors.Is(result.Failures[0].Err, types.ErrNoSearchResults))
	assert.Len(t, result.Records, 2)
	assert.Equal(t, []string{"Unknown thing", "SG RP 17 English Willow Cricket Bat site:shop.teamsg.in"}, searcher.queries)
}

func TestBatch_Run_FetchAndProviderFailures(t *testing.T) {
	searcher := &stubSearch{err: types.ErrSearchProvider}
	result, err := newTestBatch(searcher, &stubFetcher{}, nil).Run(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Len(t, result.Failures, 2)
	assert.Empty(t, result.Records)

	searcher = &stubSearch{results: map[string][]types.SearchResult{"a": {{Link: "https://x.com/p"}}}}
	fetcher := &stubFetcher{err: fmt.Errorf("%w: navigation", types.ErrFetchTimeout)}
	result, err = newTestBatch(searcher, fetcher, nil).Run(context.Background(), []string{"a"})

	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, StageFetch, result.Failures[0].Stage)
	assert.True(t, errors.Is(result.Failures[0].Err, types.ErrFetchTimeout))
}

func TestBatch_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestBatch(&stubSearch{}, &stubFetcher{}, nil).Run(ctx, []string{"a"})

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, result.Processed)
}

func TestBatch_Run_Enrichment(t *testing.T) {
	searcher := &stubSearch{results: map[string][]types.SearchResult{
		"SG RP 17 English Willow Cricket Bat site:shop.teamsg.in": {{Link: "https://shop.teamsg.in/products/rp-17"}},
	}}
	fetcher := &stubFetcher{pages: map[string]string{"https://shop.teamsg.in/products/rp-17": sgPage}}
	enricher := &stubEnricher{}

	result, err := newTestBatch(searcher, fetcher, enricher).Run(context.Background(), []string{"SG RP 17 English Willow Cricket Bat"})

	require.NoError(t, err)
	assert.Equal(t, 1, enricher.calls)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "active", result.Records[0].Status)
}

func TestBatch_Run_EnrichmentSkippedWithoutRecords(t *testing.T) {
	enricher := &stubEnricher{}

	_, err := newTestBatch(&stubSearch{}, &stubFetcher{}, enricher).Run(context.Background(), []string{"a"})

	require.NoError(t, err)
	assert.Equal(t, 0, enricher.calls)
}

func TestBatch_Run_EnrichmentErrorKeepsRecords(t *testing.T) {
	searcher := &stubSearch{results: map[string][]types.SearchResult{
		"SG RP 17 English Willow Cricket Bat site:shop.teamsg.in": {{Link: "https://shop.teamsg.in/products/rp-17"}},
	}}
	fetcher := &stubFetcher{pages: map[string]string{"https://shop.teamsg.in/products/rp-17": sgPage}}
	enricher := &stubEnricher{err: fmt.Errorf("%w: upstream 500", types.ErrModelRequest)}

	result, err := newTestBatch(searcher, fetcher, enricher).Run(context.Background(), []string{"SG RP 17 English Willow Cricket Bat"})

	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, StageEnrich, result.Failures[0].Stage)
	assert.Equal(t, 0, FailedTitles(result))
	assert.Equal(t, "Titles processed: 1, records: 2, failed: 0, output: out.csv", Summary(result, "out.csv"))
}

func TestSummary(t *testing.T) {
	result := &types.BatchResult{
		Processed: 3,
		Records:   make([]types.ProductRecord, 4),
		Failures: []types.TitleFailure{
			{Title: "Kookaburra Ghost", Stage: StageSearch, Err: types.ErrNoSearchResults},
			{Stage: StageEnrich, Err: types.ErrModelRequest},
		},
	}

	assert.Equal(t, "Titles processed: 3, records: 4, failed: 1, output: out.csv", Summary(result, "out.csv"))
}
