package adapters

import (
	"strings"

	"shopify-feed/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// defaultBodyTextLimit caps the body assembled from page paragraphs when
// the config sets no limit
const defaultBodyTextLimit = 2000

// DOMStrategy fills what the structured sources left empty from meta tags,
// headings and paragraphs
type DOMStrategy struct {
	*BaseAdapter
}

// NewDOMStrategy creates a DOM fallback strategy
func NewDOMStrategy(base *BaseAdapter) *DOMStrategy {
	return &DOMStrategy{BaseAdapter: base}
}

// Name returns the strategy name
func (s *DOMStrategy) Name() string {
	return "dom"
}

// Apply fills SEO fields, title, image, price and body
func (s *DOMStrategy) Apply(doc *goquery.Document, page types.FetchedPage, ex *Extraction) {
	rec := &ex.Record

	ogTitle, _ := s.ExtractAttribute(doc, `meta[property="og:title"]`, "content")
	description, _ := s.ExtractAttribute(doc, `meta[name="description"]`, "content")
	setIfEmpty(&rec.SEOTitle, ogTitle)
	setIfEmpty(&rec.SEODescription, description)

	if rec.Title == "" {
		if title, err := s.ExtractProductTitleFromDoc(doc); err == nil {
			rec.Title = title
		} else {
			rec.Title = ogTitle
		}
	}

	if len(rec.ImageSrc) == 0 {
		if img, err := s.ExtractAttribute(doc, `meta[property="og:image"]`, "content"); err == nil && img != "" {
			rec.ImageSrc = []string{img}
		}
	}

	if rec.VariantPrice == "" {
		for _, sel := range []string{`meta[property="product:price:amount"]`, `meta[property="og:price:amount"]`} {
			if price, err := s.ExtractAttribute(doc, sel, "content"); err == nil && price != "" {
				rec.VariantPrice = price
				break
			}
		}
	}
	if rec.Currency == "" {
		for _, sel := range []string{`meta[property="product:price:currency"]`, `meta[property="og:price:currency"]`} {
			if currency, err := s.ExtractAttribute(doc, sel, "content"); err == nil && currency != "" {
				rec.Currency = currency
				break
			}
		}
	}

	if rec.BodyHTML == "" {
		var parts []string
		doc.Find("p").Each(func(i int, p *goquery.Selection) {
			if text := CleanText(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		limit := defaultBodyTextLimit
		if s.config != nil && s.config.BodyTextLimit > 0 {
			limit = s.config.BodyTextLimit
		}
		rec.BodyHTML = truncateRunes(strings.Join(parts, " "), limit)
	}
}
