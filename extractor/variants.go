package extractor

import (
	"strings"

	"shopify-feed/internal/types"
)

// maxDimensions is the number of option columns in the schema
const maxDimensions = 3

// ExpandVariants turns a base record into one record per combination of
// dimension values, in discovery order with the first dimension outermost.
// Dimensions past the third are dropped. With no dimensions the base record
// is returned unchanged.
func ExpandVariants(base types.ProductRecord, dims []types.Dimension, variants []types.Variant) []types.ProductRecord {
	var usable []types.Dimension
	for _, d := range dims {
		if len(d.Values) > 0 {
			usable = append(usable, d)
		}
	}
	if len(usable) > maxDimensions {
		usable = usable[:maxDimensions]
	}
	if len(usable) == 0 {
		return []types.ProductRecord{base}
	}

	combos := [][]string{{}}
	for _, d := range usable {
		next := make([][]string, 0, len(combos)*len(d.Values))
		for _, c := range combos {
			for _, v := range d.Values {
				combo := append(append([]string(nil), c...), v)
				next = append(next, combo)
			}
		}
		combos = next
	}

	records := make([]types.ProductRecord, 0, len(combos))
	for _, combo := range combos {
		rec := base.Clone()
		setOptions(&rec, usable, combo)
		if v, ok := matchVariant(variants, combo); ok {
			applyVariant(&rec, v)
		}
		records = append(records, rec)
	}
	return records
}

func setOptions(rec *types.ProductRecord, dims []types.Dimension, combo []string) {
	names := []*string{&rec.Option1Name, &rec.Option2Name, &rec.Option3Name}
	values := []*string{&rec.Option1Value, &rec.Option2Value, &rec.Option3Value}
	for i := range combo {
		*names[i] = dims[i].Name
		*values[i] = combo[i]
	}
}

// matchVariant finds the vendor variant for a combination, by its option
// values or by its " / "-joined title
func matchVariant(variants []types.Variant, combo []string) (types.Variant, bool) {
	title := strings.Join(combo, " / ")
	for _, v := range variants {
		if len(v.Options) == len(combo) && equalFold(v.Options, combo) {
			return v, true
		}
	}
	for _, v := range variants {
		if strings.EqualFold(strings.TrimSpace(v.Title), title) {
			return v, true
		}
	}
	return types.Variant{}, false
}

func equalFold(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(strings.TrimSpace(a[i]), strings.TrimSpace(b[i])) {
			return false
		}
	}
	return true
}

func applyVariant(rec *types.ProductRecord, v types.Variant) {
	if v.SKU != "" {
		rec.VariantSKU = v.SKU
	}
	if v.Price != "" {
		rec.VariantPrice = v.Price
	}
	if v.Barcode != "" {
		rec.VariantBarcode = v.Barcode
	}
	if v.Image != "" {
		rec.VariantImage = []string{v.Image}
	}
}
