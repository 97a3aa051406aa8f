package adapters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"shopify-feed/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// ScriptPattern locates a vendor product payload assigned in an inline script
type ScriptPattern struct {
	Name string
	// Assignment matches the code up to the start of the JSON value
	Assignment *regexp.Regexp
	// ProductKey is the payload key holding the product; empty means the
	// payload is the product itself
	ProductKey string
}

// DefaultScriptPatterns are the storefront payloads recognised out of the box
var DefaultScriptPatterns = []ScriptPattern{
	{Name: "meta", Assignment: regexp.MustCompile(`var\s+meta\s*=\s*`), ProductKey: "product"},
	{Name: "shopify-product", Assignment: regexp.MustCompile(`Shopify\.product\s*=\s*`)},
}

// VendorScriptStrategy decodes storefront product payloads from inline scripts
type VendorScriptStrategy struct {
	*BaseAdapter
	patterns []ScriptPattern
}

// NewVendorScriptStrategy creates a vendor script strategy for patterns
func NewVendorScriptStrategy(base *BaseAdapter, patterns []ScriptPattern) *VendorScriptStrategy {
	return &VendorScriptStrategy{BaseAdapter: base, patterns: patterns}
}

// Name returns the strategy name
func (s *VendorScriptStrategy) Name() string {
	return "shopify"
}

// Apply decodes every matching payload; the first one carrying variants
// provides the variant list
func (s *VendorScriptStrategy) Apply(doc *goquery.Document, page types.FetchedPage, ex *Extraction) {
	doc.Find("script:not([src])").Each(func(i int, sel *goquery.Selection) {
		text := sel.Text()
		for _, p := range s.patterns {
			loc := p.Assignment.FindStringIndex(text)
			if loc == nil {
				continue
			}

			product, err := decodePayload(text[loc[1]:], p.ProductKey)
			if err != nil {
				s.logger.Debugf("Failed to decode %s payload on %s: %v", p.Name, page.URL, err)
				continue
			}
			s.logger.Debugf("Decoded %s payload on %s", p.Name, page.URL)
			s.merge(product, ex)
		}
	})
}

// decodePayload reads exactly one JSON object from the start of src
func decodePayload(src, productKey string) (map[string]interface{}, error) {
	src = strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(src, "{") {
		return nil, fmt.Errorf("assignment is not an object literal")
	}

	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}

	if productKey == "" {
		return payload, nil
	}
	product, ok := payload[productKey].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("payload has no %q object", productKey)
	}
	return product, nil
}

func (s *VendorScriptStrategy) merge(product map[string]interface{}, ex *Extraction) {
	rec := &ex.Record
	setIfEmpty(&rec.Title, scriptString(product["title"]))
	setIfEmpty(&rec.Vendor, scriptString(product["vendor"]))
	setIfEmpty(&rec.Type, scriptString(product["type"]))
	setIfEmpty(&rec.BodyHTML, scriptString(product["description"]))

	if len(rec.Tags) == 0 {
		switch tags := product["tags"].(type) {
		case []interface{}:
			for _, t := range tags {
				if tag := scriptString(t); tag != "" {
					rec.Tags = append(rec.Tags, tag)
				}
			}
		case string:
			rec.Tags = types.SplitList(tags)
		}
	}

	if len(rec.ImageSrc) == 0 {
		if images, ok := product["images"].([]interface{}); ok {
			for _, img := range images {
				if src := imageSrc(img); src != "" {
					rec.ImageSrc = append(rec.ImageSrc, src)
				}
			}
		}
		if src := imageSrc(product["featured_image"]); len(rec.ImageSrc) == 0 && src != "" {
			rec.ImageSrc = []string{src}
		}
	}

	rawVariants, _ := product["variants"].([]interface{})
	if len(ex.Variants) > 0 || len(rawVariants) == 0 {
		return
	}

	for _, raw := range rawVariants {
		v, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		ex.Variants = append(ex.Variants, parseVariant(v))
	}

	if len(ex.Variants) > 0 {
		setIfEmpty(&rec.VariantPrice, ex.Variants[0].Price)
	}
	if len(ex.vendorDims) == 0 {
		ex.vendorDims = optionDimensions(product["options"], ex.Variants)
	}
}

func parseVariant(v map[string]interface{}) types.Variant {
	variant := types.Variant{
		SKU:     scriptString(v["sku"]),
		Price:   MinorUnitPrice(v["price"]),
		Barcode: scriptString(v["barcode"]),
		Image:   imageSrc(v["featured_image"]),
	}

	for _, key := range []string{"public_title", "title", "name"} {
		if t := scriptString(v[key]); t != "" {
			variant.Title = t
			break
		}
	}

	for _, key := range []string{"option1", "option2", "option3"} {
		if opt := scriptString(v[key]); opt != "" {
			variant.Options = append(variant.Options, opt)
		}
	}
	if len(variant.Options) == 0 {
		if opts, ok := v["options"].([]interface{}); ok {
			for _, o := range opts {
				if opt := scriptString(o); opt != "" {
					variant.Options = append(variant.Options, opt)
				}
			}
		}
	}
	return variant
}

// optionDimensions builds dimensions from the payload's option names and the
// variants' option values
func optionDimensions(raw interface{}, variants []types.Variant) []types.Dimension {
	opts, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var dims []types.Dimension
	for i, o := range opts {
		var dim types.Dimension
		switch t := o.(type) {
		case string:
			dim.Name = t
		case map[string]interface{}:
			dim.Name = scriptString(t["name"])
			if values, ok := t["values"].([]interface{}); ok {
				for _, val := range values {
					if s := scriptString(val); s != "" {
						dim.Values = append(dim.Values, s)
					}
				}
			}
		}
		if dim.Name == "" {
			continue
		}
		if len(dim.Values) == 0 {
			seen := make(map[string]bool)
			for _, v := range variants {
				if i < len(v.Options) && !seen[v.Options[i]] {
					seen[v.Options[i]] = true
					dim.Values = append(dim.Values, v.Options[i])
				}
			}
		}
		if len(dim.Values) == 0 || (len(dim.Values) == 1 && dim.Values[0] == "Default Title") {
			continue
		}
		dims = append(dims, dim)
	}
	return dims
}

// MinorUnitPrice converts a numeric minor-unit price to a two-decimal string;
// string prices are kept as-is
func MinorUnitPrice(v interface{}) string {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return fmt.Sprintf("%.2f", f/100)
	case float64:
		return fmt.Sprintf("%.2f", t/100)
	case string:
		return strings.TrimSpace(t)
	}
	return ""
}

func scriptString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func imageSrc(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		return scriptString(t["src"])
	}
	return ""
}
