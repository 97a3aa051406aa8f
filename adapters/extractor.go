package adapters

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"shopify-feed/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is what one product page yields before variant expansion
type Extraction struct {
	Record     types.ProductRecord
	Dimensions []types.Dimension
	Variants   []types.Variant

	// Option dimensions described by the vendor script, used when the
	// page has no option selects
	vendorDims []types.Dimension
}

// Strategy contributes fields to an extraction. Strategies only fill fields
// that are still empty.
type Strategy interface {
	Name() string
	Apply(doc *goquery.Document, page types.FetchedPage, ex *Extraction)
}

// Extractor runs the extraction strategies over one parsed page
type Extractor struct {
	*BaseAdapter
	strategies []Strategy
}

// NewExtractor creates an extractor with the default strategy order:
// linked data, vendor inline script, DOM fallback
func NewExtractor(config *types.Config, logger types.Logger) *Extractor {
	base := NewBaseAdapter(config, logger)
	return NewExtractorWithStrategies(base,
		NewJSONLDStrategy(base),
		NewVendorScriptStrategy(base, DefaultScriptPatterns),
		NewDOMStrategy(base),
	)
}

// NewExtractorWithStrategies creates an extractor running strategies in order
func NewExtractorWithStrategies(base *BaseAdapter, strategies ...Strategy) *Extractor {
	return &Extractor{BaseAdapter: base, strategies: strategies}
}

// Extract never fails; a page nothing recognises yields a record with only
// its source URL set
func (e *Extractor) Extract(page types.FetchedPage) Extraction {
	ex := Extraction{}
	ex.Record.SourceURL = page.URL

	doc, err := e.ParseHTML(page.HTML)
	if err != nil {
		e.logger.Warnf("Failed to parse page %s: %v", page.URL, err)
		return ex
	}

	for _, s := range e.strategies {
		before := ex.Record.Row()
		s.Apply(doc, page, &ex)
		e.logger.Debugf("Strategy %s filled %d fields on %s", s.Name(), changedCells(before, ex.Record.Row()), page.URL)
	}

	ex.Dimensions = SelectDimensions(doc)
	if len(ex.Dimensions) == 0 {
		ex.Dimensions = ex.vendorDims
	}
	if len(ex.Dimensions) == 0 {
		ex.Dimensions = dimensionsFromVariants(ex.Variants)
	}
	if len(ex.Dimensions) == 0 && len(ex.Variants) == 1 {
		foldSingleVariant(&ex.Record, ex.Variants[0])
	}

	e.finalize(doc, page, &ex)
	return ex
}

func changedCells(before, after []string) int {
	n := 0
	for i := range before {
		if before[i] != after[i] {
			n++
		}
	}
	return n
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonSlug    = regexp.MustCompile(`[^a-z0-9]+`)
	htmlTag    = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
)

// Slug builds a handle: lowercase, runs of non-alphanumerics become one
// hyphen, leading and trailing hyphens trimmed
func Slug(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// CleanText replaces non-breaking spaces and collapses whitespace to single spaces
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// WrapBody renders a description as one line of HTML; plain text is wrapped in a <p>
func WrapBody(body string) string {
	body = CleanText(body)
	if body == "" {
		return ""
	}
	if htmlTag.MatchString(body) {
		return body
	}
	return "<p>" + body + "</p>"
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func (e *Extractor) finalize(doc *goquery.Document, page types.FetchedPage, ex *Extraction) {
	rec := &ex.Record
	base := e.BaseURL(doc, page.URL)

	rec.Title = CleanText(rec.Title)
	plain := CleanText(htmlTag.ReplaceAllString(rec.BodyHTML, " "))
	rec.BodyHTML = WrapBody(rec.BodyHTML)

	setIfEmpty(&rec.SEOTitle, rec.Title)
	setIfEmpty(&rec.SEODescription, plain)
	setIfEmpty(&rec.Handle, Slug(rec.Title))

	rec.ImageSrc = e.absoluteImages(base, rec.ImageSrc)
	rec.VariantImage = e.absoluteImages(base, rec.VariantImage)
	for i := range ex.Variants {
		if ex.Variants[i].Image != "" {
			ex.Variants[i].Image = ResolveURL(base, ex.Variants[i].Image)
		}
	}
}

func (e *Extractor) absoluteImages(base string, images []string) []string {
	resolved := make([]string, 0, len(images))
	for _, img := range images {
		abs := ResolveURL(base, img)
		if strings.HasPrefix(abs, "http://") || strings.HasPrefix(abs, "https://") {
			resolved = append(resolved, abs)
		}
	}
	return e.RemoveDuplicateURLs(resolved)
}

// foldSingleVariant copies the commerce fields of a product's only variant
// into the base record, since no expansion will apply them
func foldSingleVariant(rec *types.ProductRecord, v types.Variant) {
	setIfEmpty(&rec.VariantSKU, v.SKU)
	setIfEmpty(&rec.VariantPrice, v.Price)
	setIfEmpty(&rec.VariantBarcode, v.Barcode)
	if len(rec.VariantImage) == 0 && v.Image != "" {
		rec.VariantImage = []string{v.Image}
	}
}

// dimensionsFromVariants derives a single Size dimension from the distinct
// variant titles
func dimensionsFromVariants(variants []types.Variant) []types.Dimension {
	var values []string
	seen := make(map[string]bool)
	for _, v := range variants {
		title := strings.TrimSpace(v.Title)
		if title == "" || seen[title] || strings.EqualFold(title, "Default Title") {
			continue
		}
		seen[title] = true
		values = append(values, title)
	}
	if len(values) == 0 {
		return nil
	}
	return []types.Dimension{{Name: "Size", Values: values}}
}
