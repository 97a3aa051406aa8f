package adapters

import (
	"fmt"
	"net/url"
	"strings"

	"shopify-feed/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides the document helpers shared by the extraction
// strategies and the listing resolver.
type BaseAdapter struct {
	config *types.Config
	logger types.Logger
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(config *types.Config, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config: config,
		logger: logger,
	}
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ExtractText extracts text from the first element matching a CSS selector
func (b *BaseAdapter) ExtractText(doc *goquery.Document, selector string) (string, error) {
	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	return strings.TrimSpace(element.Text()), nil
}

// ExtractAttribute extracts an attribute value from the first matching element
func (b *BaseAdapter) ExtractAttribute(doc *goquery.Document, selector string, attribute string) (string, error) {
	element := doc.Find(selector).First()
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	value, exists := element.Attr(attribute)
	if !exists {
		return "", fmt.Errorf("attribute %s not found on element %s", attribute, selector)
	}

	return strings.TrimSpace(value), nil
}

// ExtractProductTitleFromDoc extracts the product title from an already parsed document
func (b *BaseAdapter) ExtractProductTitleFromDoc(doc *goquery.Document) (string, error) {
	// Try different selectors for product title
	selectors := []string{
		"h1.product-title",
		"h1.product__title",
		"h1[class*='title']",
		".product-name h1",
		".product-info h1",
		".product-details h1",
		"h1",
	}

	for _, selector := range selectors {
		title, err := b.ExtractText(doc, selector)
		if err == nil && title != "" {
			return title, nil
		}
	}

	return "", fmt.Errorf("product title not found on page")
}

// BaseURL returns the URL relative references on the page resolve against:
// the <base href> when present, otherwise the page URL
func (b *BaseAdapter) BaseURL(doc *goquery.Document, pageURL string) string {
	href, err := b.ExtractAttribute(doc, "base[href]", "href")
	if err != nil || href == "" {
		return pageURL
	}
	return ResolveURL(pageURL, href)
}

// ResolveURL resolves href against base. Unparseable input is returned as-is.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		if strings.HasPrefix(href, "//") {
			return "https:" + href
		}
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// RemoveDuplicateURLs removes duplicate and empty URLs, keeping first occurrences
func (b *BaseAdapter) RemoveDuplicateURLs(urls []string) []string {
	seen := make(map[string]bool)
	var uniqueURLs []string

	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		uniqueURLs = append(uniqueURLs, u)
	}

	return uniqueURLs
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = strings.TrimSpace(value)
	}
}
