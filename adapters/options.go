package adapters

import (
	"regexp"
	"strings"

	"shopify-feed/internal/types"

	"github.com/PuerkitoBio/goquery"
)

var bracketedOption = regexp.MustCompile(`^options?\[(.+)\]$`)

// Selects that carry cart plumbing rather than product options
var ignoredSelects = map[string]bool{"id": true, "quantity": true}

// SelectDimensions reads each option <select> into a dimension in page order.
// Placeholder entries and duplicate names are skipped.
func SelectDimensions(doc *goquery.Document) []types.Dimension {
	var dims []types.Dimension
	seen := make(map[string]bool)

	doc.Find("select").Each(func(i int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.AttrOr("name", ""))
		if name == "" {
			name = strings.TrimSpace(sel.AttrOr("id", ""))
		}
		if m := bracketedOption.FindStringSubmatch(name); m != nil {
			name = m[1]
		}
		if name == "" || ignoredSelects[strings.ToLower(name)] || seen[name] {
			return
		}

		var values []string
		seenValue := make(map[string]bool)
		sel.Find("option").Each(func(j int, opt *goquery.Selection) {
			text := CleanText(opt.Text())
			if text == "" || seenValue[text] || isPlaceholder(opt, text) {
				return
			}
			seenValue[text] = true
			values = append(values, text)
		})
		if len(values) == 0 {
			return
		}

		seen[name] = true
		dims = append(dims, types.Dimension{Name: name, Values: values})
	})

	return dims
}

func isPlaceholder(opt *goquery.Selection, text string) bool {
	if value, ok := opt.Attr("value"); ok && strings.TrimSpace(value) == "" {
		return true
	}
	lower := strings.ToLower(text)
	return strings.HasPrefix(lower, "select") || strings.HasPrefix(lower, "choose")
}
