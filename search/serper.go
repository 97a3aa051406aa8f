package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"shopify-feed/internal/types"
	"shopify-feed/utils"
)

// Searcher returns organic results for a query
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]types.SearchResult, error)
}

// JunkHosts are link hosts that never carry a product page
var JunkHosts = []string{"youtube", "facebook", "reddit", "pinterest", "instagram"}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []types.SearchResult `json:"organic"`
}

// Client queries the Serper web search API
type Client struct {
	http   *utils.HTTPClient
	url    string
	apiKey string
	logger types.Logger
}

// NewClient creates a new search client
func NewClient(http *utils.HTTPClient, config *types.Config, logger types.Logger) *Client {
	return &Client{
		http:   http,
		url:    config.SearchURL,
		apiKey: config.SearchAPIKey,
		logger: logger,
	}
}

// Search runs query and returns the organic results in rank order
func (c *Client) Search(ctx context.Context, query string, num int) ([]types.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", types.ErrSearchProvider)
	}

	c.logger.Debugf("Searching %q", query)

	var resp serperResponse
	headers := map[string]string{"X-API-KEY": c.apiKey}
	if err := c.http.PostJSON(ctx, c.url, headers, serperRequest{Q: query, Num: num}, &resp); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrSearchProvider, err)
	}

	c.logger.Debugf("Search %q returned %d results", query, len(resp.Organic))
	return resp.Organic, nil
}

// FirstProductLink returns the first result link whose host is not a junk host
func FirstProductLink(results []types.SearchResult) (string, bool) {
	for _, r := range results {
		if r.Link == "" || IsJunk(r.Link) {
			continue
		}
		return r.Link, true
	}
	return "", false
}

// IsJunk reports whether link points at a social or video host
func IsJunk(link string) bool {
	host := link
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	for _, junk := range JunkHosts {
		if strings.Contains(host, junk) {
			return true
		}
	}
	return false
}

// Query builds the search query for a title, scoped to a site when known
func Query(title, scope string) string {
	if scope == "" {
		return title
	}
	return title + " site:" + scope
}
