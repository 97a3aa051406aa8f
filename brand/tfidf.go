package brand

import (
	"math"
	"regexp"
	"strings"
)

// Tokens of two or more letters, digits or underscores
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// CosineScores fits a TF-IDF model over docs plus query (smoothed idf,
// l2-normalised rows) and returns the cosine similarity of query to each doc.
func CosineScores(query string, docs []string) []float64 {
	corpus := make([][]string, 0, len(docs)+1)
	for _, d := range docs {
		corpus = append(corpus, tokenize(d))
	}
	corpus = append(corpus, tokenize(query))

	df := make(map[string]int)
	for _, toks := range corpus {
		seen := make(map[string]bool, len(toks))
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(corpus))
	vectorize := func(toks []string) map[string]float64 {
		v := make(map[string]float64, len(toks))
		for _, t := range toks {
			v[t]++
		}
		var norm float64
		for t, tf := range v {
			w := tf * (math.Log((1+n)/(1+float64(df[t]))) + 1)
			v[t] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for t := range v {
				v[t] /= norm
			}
		}
		return v
	}

	q := vectorize(corpus[len(corpus)-1])
	scores := make([]float64, len(docs))
	for i := range docs {
		d := vectorize(corpus[i])
		var dot float64
		for t, w := range q {
			dot += w * d[t]
		}
		scores[i] = dot
	}
	return scores
}
