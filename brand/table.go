package brand

import (
	"strings"

	"shopify-feed/internal/types"
)

// DefaultBrands is the built-in brand table, in match priority order
var DefaultBrands = []types.BrandEntry{
	{Name: "SG", Site: "https://shop.teamsg.in/"},
	{Name: "Kookaburra", Site: "https://www.kookaburrasport.com.au/"},
	{Name: "Gray-Nicolls", Site: "https://www.gray-nicolls.co.uk/"},
	{Name: "MRF", Site: "https://www.mrfsports.com/"},
	{Name: "SS", Site: "https://www.sstoncricket.com/"},
	{Name: "Adidas", Site: "https://www.adidas.co.in/cricket"},
	{Name: "New Balance", Site: "https://www.newbalance.co.uk/cricket/"},
	{Name: "Gunn & Moore", Site: "https://www.gm-cricket.com/"},
	{Name: "DSC", Site: "https://dsc-cricket.com/"},
	{Name: "CA", Site: "https://www.ca-sports.com.pk/"},
	{Name: "Spartan", Site: "https://www.spartansports.com/"},
	{Name: "Puma", Site: "https://in.puma.com/in/en/mens/mens-sports/cricket"},
	{Name: "TON", Site: "https://www.toncricket.com/"},
	{Name: "SS TON", Site: "https://www.sstoncricket.com/"},
	{Name: "ASICS", Site: "https://www.asics.com/in/en-in/cricket/c/cricket/"},
	{Name: "Masuri", Site: "https://www.masuri.com/"},
	{Name: "Aero", Site: "https://aerocricket.com/"},
	{Name: "Shrey", Site: "https://shreysports.com/"},
	{Name: "Protos", Site: "https://protoscricket.com/"},
	{Name: "Payntr", Site: "https://www.payntr.com/"},
	{Name: "Moonwalkr", Site: "https://moonwalkr.com/"},
}

// Table is the read-only brand → storefront mapping
type Table struct {
	entries []types.BrandEntry
	index   map[string]int
}

// NewTable builds a table; later duplicates of a name are ignored
func NewTable(entries []types.BrandEntry) *Table {
	t := &Table{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		if _, dup := t.index[e.Name]; dup {
			continue
		}
		t.index[e.Name] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

// Names returns the brand names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Has reports whether name is a known brand
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Site returns the storefront URL of a brand
func (t *Table) Site(name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.entries[i].Site, true
}

// SiteScope returns the site: operand for a brand, e.g. "shop.teamsg.in"
func (t *Table) SiteScope(name string) string {
	site, ok := t.Site(name)
	if !ok {
		return ""
	}
	site = strings.TrimPrefix(site, "https://")
	site = strings.TrimPrefix(site, "http://")
	return strings.TrimSuffix(site, "/")
}
