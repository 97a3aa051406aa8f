package llm

import (
	"fmt"
	"strings"
)

// ColumnSystemPrompt constrains enrichment answers to a bare JSON array
const ColumnSystemPrompt = `You are an expert Shopify product data builder and eCommerce SEO specialist.

Strict output rule:
- Return pure JSON only.
- The output must begin with [ and end with ].
- Do not include any explanations, text, labels, or markdown.
- Do not prefix with lines like "Here is the processed JSON array:" or "Output:".
- Use empty strings ("") for missing text values and empty arrays ([]) for missing list values.
- Remove all newline characters inside the "Body (HTML)".
- Escape all double quotes inside values.`

const productDetailsPrompt = `You are an intelligent eCommerce data structuring assistant.

Complete the Shopify product rows below. Each element is one variant; keep every
element and its Option values, fill empty fields you can infer, and never
invent prices, SKUs or barcodes.

Body (HTML):
- Wrap the description in a single <p> tag on one line.
- Remove newlines, extra whitespace and invisible characters.

Handle (slug), if empty:
1. Lowercase the title.
2. Replace every non-alphanumeric character with "-".
3. Trim leading and trailing hyphens.
Example: SG RP 250 English Willow Str8bat -> sg-rp-250-english-willow-str8bat

Images:
- Only absolute http/https URLs; exclude placeholders.
- Keep the main product image in "Image Src" and variant images in "Variant Image".

SEO and categorization: derive SEO Title, SEO Description, Product Category and
the Google Shopping attributes (Gender, Age Group, Condition, MPN) when possible;
leave them blank otherwise.

Return only a JSON array using exactly these keys:
%s`

// ProductDetailsPrompt builds the user prompt for one chunk of serialized rows
func ProductDetailsPrompt(columns []string, part, total int, chunk string) string {
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = fmt.Sprintf("%q", c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, productDetailsPrompt, strings.Join(keys, ", "))
	fmt.Fprintf(&b, "\n\nProduct rows (part %d of %d):\n%s", part, total, chunk)
	return b.String()
}
