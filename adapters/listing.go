package adapters

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"shopify-feed/internal/types"
	"shopify-feed/utils"
)

// DefaultListingRules are the storefronts whose search hits are category
// listings rather than product pages
var DefaultListingRules = []types.ListingRule{
	{
		HostContains: "sstoncricket.com",
		PathPattern:  `/all-products/.*\.html`,
		LinkSelector: "a.product-item-link[href]",
	},
}

type listingRule struct {
	host     string
	path     *regexp.Regexp
	selector string
}

// ListingResolver replaces listing URLs with their first product link
type ListingResolver struct {
	*BaseAdapter
	fetcher utils.PageFetcher
	rules   []listingRule
}

// NewListingResolver compiles rules; rules with an invalid path pattern are
// logged and skipped
func NewListingResolver(base *BaseAdapter, fetcher utils.PageFetcher, rules []types.ListingRule) *ListingResolver {
	r := &ListingResolver{BaseAdapter: base, fetcher: fetcher}
	for _, rule := range rules {
		path, err := regexp.Compile(rule.PathPattern)
		if err != nil {
			base.logger.Warnf("Ignoring listing rule for %s: %v", rule.HostContains, err)
			continue
		}
		r.rules = append(r.rules, listingRule{
			host:     strings.ToLower(rule.HostContains),
			path:     path,
			selector: rule.LinkSelector,
		})
	}
	return r
}

func (r *ListingResolver) match(link string) *listingRule {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Host)
	for i := range r.rules {
		rule := &r.rules[i]
		if strings.Contains(host, rule.host) && rule.path.MatchString(u.Path) {
			return rule
		}
	}
	return nil
}

// Resolve returns the first product link of a listing page, or link itself
// when it is not a listing or cannot be resolved
func (r *ListingResolver) Resolve(ctx context.Context, link string) string {
	rule := r.match(link)
	if rule == nil {
		return link
	}

	html, err := r.fetcher.Fetch(ctx, link)
	if err != nil {
		r.logger.Warnf("Could not resolve listing page %s: %v", link, err)
		return link
	}

	doc, err := r.ParseHTML(html)
	if err != nil {
		r.logger.Warnf("Failed to parse listing page %s: %v", link, err)
		return link
	}

	href, err := r.ExtractAttribute(doc, rule.selector, "href")
	if err != nil || href == "" {
		r.logger.Warnf("No product link on listing page %s", link)
		return link
	}

	resolved := ResolveURL(r.BaseURL(doc, link), href)
	r.logger.Infof("Resolved listing %s to product %s", link, resolved)
	return resolved
}
