package adapters

import (
	"strings"

	"shopify-feed/internal/types"
	"shopify-feed/utils"

	"github.com/PuerkitoBio/goquery"
)

// JSONLDStrategy reads the first schema.org Product from linked-data blocks
type JSONLDStrategy struct {
	*BaseAdapter
}

// NewJSONLDStrategy creates a linked-data strategy
func NewJSONLDStrategy(base *BaseAdapter) *JSONLDStrategy {
	return &JSONLDStrategy{BaseAdapter: base}
}

// Name returns the strategy name
func (s *JSONLDStrategy) Name() string {
	return "json-ld"
}

// Apply fills title, body, images, price, currency, sku, brand and barcode
func (s *JSONLDStrategy) Apply(doc *goquery.Document, page types.FetchedPage, ex *Extraction) {
	var product map[string]interface{}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var data interface{}
		repaired, err := utils.LenientUnmarshal(sel.Text(), &data)
		if err != nil {
			s.logger.Debugf("Skipping unreadable linked-data block %d on %s: %v", i, page.URL, err)
			return true
		}
		if repaired {
			s.logger.Debugf("Repaired linked-data block %d on %s", i, page.URL)
		}

		product = findProduct(data)
		return product == nil
	})

	if product == nil {
		return
	}

	rec := &ex.Record
	setIfEmpty(&rec.Title, stringField(product, "name"))
	setIfEmpty(&rec.BodyHTML, stringField(product, "description"))
	setIfEmpty(&rec.VariantSKU, stringField(product, "sku"))
	setIfEmpty(&rec.GoogleMPN, stringField(product, "mpn"))
	setIfEmpty(&rec.Vendor, nameOf(product["brand"]))
	for _, key := range []string{"gtin13", "gtin", "gtin12", "gtin14", "gtin8"} {
		setIfEmpty(&rec.VariantBarcode, stringField(product, key))
	}

	if len(rec.ImageSrc) == 0 {
		if img := firstImage(product["image"]); img != "" {
			rec.ImageSrc = []string{img}
		}
	}

	if offer := firstObject(product["offers"]); offer != nil {
		price := types.CellString(offer["price"])
		if price == "" {
			price = types.CellString(offer["lowPrice"])
		}
		setIfEmpty(&rec.VariantPrice, price)
		setIfEmpty(&rec.Currency, stringField(offer, "priceCurrency"))
	}
}

// findProduct walks objects, arrays and @graph containers for the first
// entry typed Product
func findProduct(data interface{}) map[string]interface{} {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if p := findProduct(item); p != nil {
				return p
			}
		}
	case map[string]interface{}:
		if isProductType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findProduct(graph)
		}
	}
	return nil
}

func isProductType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Product" || strings.HasSuffix(v, "/Product")
	case []interface{}:
		for _, item := range v {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

func stringField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string, float64, bool:
		return types.CellString(v)
	}
	return ""
}

func nameOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		return stringField(t, "name")
	case []interface{}:
		if len(t) > 0 {
			return nameOf(t[0])
		}
	}
	return ""
}

// firstImage accepts a URL string, a list, or an ImageObject
func firstImage(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		for _, item := range t {
			if img := firstImage(item); img != "" {
				return img
			}
		}
	case map[string]interface{}:
		if u := stringField(t, "url"); u != "" {
			return u
		}
		return stringField(t, "contentUrl")
	}
	return ""
}

func firstObject(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if offers, ok := t["offers"]; ok && t["price"] == nil {
			// AggregateOffer nesting
			if inner := firstObject(offers); inner != nil {
				return inner
			}
		}
		return t
	case []interface{}:
		for _, item := range t {
			if obj := firstObject(item); obj != nil {
				return obj
			}
		}
	}
	return nil
}
