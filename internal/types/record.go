package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ListSeparator joins list-valued columns into a single cell
const ListSeparator = ", "

// ProductRecord is one row of the Shopify product import schema.
// Every column is a named field; missing values are empty strings.
type ProductRecord struct {
	Handle          string
	Title           string
	BodyHTML        string
	Vendor          string
	ProductCategory string
	Type            string
	Tags            []string
	Published       string

	Option1Name  string
	Option1Value string
	Option2Name  string
	Option2Value string
	Option3Name  string
	Option3Value string

	VariantSKU                string
	VariantGrams              string
	VariantInventoryTracker   string
	VariantInventoryQty       string
	VariantInventoryPolicy    string
	VariantFulfillmentService string
	VariantPrice              string
	VariantCompareAtPrice     string
	VariantRequiresShipping   string
	VariantTaxable            string
	VariantBarcode            string

	ImageSrc      []string
	ImagePosition string
	ImageAltText  string
	GiftCard      string

	SEOTitle       string
	SEODescription string

	GoogleProductCategory string
	GoogleGender          string
	GoogleAgeGroup        string
	GoogleMPN             string
	GoogleCondition       string
	GoogleCustomProduct   string

	VariantImage      []string
	VariantWeightUnit string
	VariantTaxCode    string
	CostPerItem       string

	IncludedUS         string
	PriceUS            string
	CompareAtPriceUS   string
	IncludedIntl       string
	PriceIntl          string
	CompareAtPriceIntl string

	Status string

	// Provenance, not part of the column schema
	SourceURL string
	Currency  string
}

// Column binds a header name to the record field it reads and writes
type Column struct {
	Name string
	List bool
	str  func(r *ProductRecord) *string
	list func(r *ProductRecord) *[]string
}

// Get returns the cell value of the column, joining list fields
func (c Column) Get(r *ProductRecord) string {
	if c.List {
		return strings.Join(*c.list(r), ListSeparator)
	}
	return *c.str(r)
}

// Set stores a cell value, splitting list fields on commas
func (c Column) Set(r *ProductRecord, value string) {
	if c.List {
		*c.list(r) = SplitList(value)
		return
	}
	*c.str(r) = value
}

func strCol(name string, f func(r *ProductRecord) *string) Column {
	return Column{Name: name, str: f}
}

func listCol(name string, f func(r *ProductRecord) *[]string) Column {
	return Column{Name: name, List: true, list: f}
}

// Columns is the fixed output schema, in header order
var Columns = []Column{
	strCol("Handle", func(r *ProductRecord) *string { return &r.Handle }),
	strCol("Title", func(r *ProductRecord) *string { return &r.Title }),
	strCol("Body (HTML)", func(r *ProductRecord) *string { return &r.BodyHTML }),
	strCol("Vendor", func(r *ProductRecord) *string { return &r.Vendor }),
	strCol("Product Category", func(r *ProductRecord) *string { return &r.ProductCategory }),
	strCol("Type", func(r *ProductRecord) *string { return &r.Type }),
	listCol("Tags", func(r *ProductRecord) *[]string { return &r.Tags }),
	strCol("Published", func(r *ProductRecord) *string { return &r.Published }),
	strCol("Option1 Name", func(r *ProductRecord) *string { return &r.Option1Name }),
	strCol("Option1 Value", func(r *ProductRecord) *string { return &r.Option1Value }),
	strCol("Option2 Name", func(r *ProductRecord) *string { return &r.Option2Name }),
	strCol("Option2 Value", func(r *ProductRecord) *string { return &r.Option2Value }),
	strCol("Option3 Name", func(r *ProductRecord) *string { return &r.Option3Name }),
	strCol("Option3 Value", func(r *ProductRecord) *string { return &r.Option3Value }),
	strCol("Variant SKU", func(r *ProductRecord) *string { return &r.VariantSKU }),
	strCol("Variant Grams", func(r *ProductRecord) *string { return &r.VariantGrams }),
	strCol("Variant Inventory Tracker", func(r *ProductRecord) *string { return &r.VariantInventoryTracker }),
	strCol("Variant Inventory Qty", func(r *ProductRecord) *string { return &r.VariantInventoryQty }),
	strCol("Variant Inventory Policy", func(r *ProductRecord) *string { return &r.VariantInventoryPolicy }),
	strCol("Variant Fulfillment Service", func(r *ProductRecord) *string { return &r.VariantFulfillmentService }),
	strCol("Variant Price", func(r *ProductRecord) *string { return &r.VariantPrice }),
	strCol("Variant Compare At Price", func(r *ProductRecord) *string { return &r.VariantCompareAtPrice }),
	strCol("Variant Requires Shipping", func(r *ProductRecord) *string { return &r.VariantRequiresShipping }),
	strCol("Variant Taxable", func(r *ProductRecord) *string { return &r.VariantTaxable }),
	strCol("Variant Barcode", func(r *ProductRecord) *string { return &r.VariantBarcode }),
	listCol("Image Src", func(r *ProductRecord) *[]string { return &r.ImageSrc }),
	strCol("Image Position", func(r *ProductRecord) *string { return &r.ImagePosition }),
	strCol("Image Alt Text", func(r *ProductRecord) *string { return &r.ImageAltText }),
	strCol("Gift Card", func(r *ProductRecord) *string { return &r.GiftCard }),
	strCol("SEO Title", func(r *ProductRecord) *string { return &r.SEOTitle }),
	strCol("SEO Description", func(r *ProductRecord) *string { return &r.SEODescription }),
	strCol("Google Shopping / Google Product Category", func(r *ProductRecord) *string { return &r.GoogleProductCategory }),
	strCol("Google Shopping / Gender", func(r *ProductRecord) *string { return &r.GoogleGender }),
	strCol("Google Shopping / Age Group", func(r *ProductRecord) *string { return &r.GoogleAgeGroup }),
	strCol("Google Shopping / MPN", func(r *ProductRecord) *string { return &r.GoogleMPN }),
	strCol("Google Shopping / Condition", func(r *ProductRecord) *string { return &r.GoogleCondition }),
	strCol("Google Shopping / Custom Product", func(r *ProductRecord) *string { return &r.GoogleCustomProduct }),
	listCol("Variant Image", func(r *ProductRecord) *[]string { return &r.VariantImage }),
	strCol("Variant Weight Unit", func(r *ProductRecord) *string { return &r.VariantWeightUnit }),
	strCol("Variant Tax Code", func(r *ProductRecord) *string { return &r.VariantTaxCode }),
	strCol("Cost per item", func(r *ProductRecord) *string { return &r.CostPerItem }),
	strCol("Included / United States", func(r *ProductRecord) *string { return &r.IncludedUS }),
	strCol("Price / United States", func(r *ProductRecord) *string { return &r.PriceUS }),
	strCol("Compare At Price / United States", func(r *ProductRecord) *string { return &r.CompareAtPriceUS }),
	strCol("Included / International", func(r *ProductRecord) *string { return &r.IncludedIntl }),
	strCol("Price / International", func(r *ProductRecord) *string { return &r.PriceIntl }),
	strCol("Compare At Price / International", func(r *ProductRecord) *string { return &r.CompareAtPriceIntl }),
	strCol("Status", func(r *ProductRecord) *string { return &r.Status }),
}

var columnIndex = func() map[string]Column {
	m := make(map[string]Column, len(Columns))
	for _, c := range Columns {
		m[c.Name] = c
	}
	return m
}()

// Header returns the column names in output order
func Header() []string {
	header := make([]string, len(Columns))
	for i, c := range Columns {
		header[i] = c.Name
	}
	return header
}

// LookupColumn finds a column by its header name
func LookupColumn(name string) (Column, bool) {
	c, ok := columnIndex[name]
	return c, ok
}

// Row flattens the record into cells in header order
func (r *ProductRecord) Row() []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		row[i] = c.Get(r)
	}
	return row
}

// Clone returns a deep copy of the record
func (r ProductRecord) Clone() ProductRecord {
	out := r
	out.Tags = append([]string(nil), r.Tags...)
	out.ImageSrc = append([]string(nil), r.ImageSrc...)
	out.VariantImage = append([]string(nil), r.VariantImage...)
	return out
}

// RecordFromRow builds a record from a column-keyed row such as a model
// completion object. Keys outside the schema are returned as unknown.
// "Source URL" and "Currency" fill the provenance fields.
func RecordFromRow(row map[string]interface{}) (ProductRecord, []string) {
	var rec ProductRecord
	var unknown []string
	for key, raw := range row {
		switch key {
		case "Source URL":
			rec.SourceURL = CellString(raw)
			continue
		case "Currency":
			rec.Currency = CellString(raw)
			continue
		}
		col, ok := columnIndex[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if col.List {
			*col.list(&rec) = cellList(raw)
			continue
		}
		*col.str(&rec) = CellString(raw)
	}
	return rec, unknown
}

// CellString renders an arbitrary decoded JSON value as a cell
func CellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case []interface{}:
		return strings.Join(cellList(t), ListSeparator)
	default:
		return fmt.Sprint(t)
	}
}

func cellList(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := CellString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return SplitList(CellString(v))
	}
}

// SplitList splits a joined list cell back into its items
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
