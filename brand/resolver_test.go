package brand

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"shopify-feed/internal/types"
)

type fakeCompleter struct {
	answer string
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func newResolver(entries []types.BrandEntry, model Completer) *Resolver {
	return NewResolver(NewTable(entries), model, types.DefaultConfig(), logrus.New())
}

func entries(names ...string) []types.BrandEntry {
	out := make([]types.BrandEntry, len(names))
	for i, n := range names {
		out[i] = types.BrandEntry{Name: n, Site: "https://" + n + ".example/"}
	}
	return out
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialRatio("SG RP 17 English Willow Cricket Bat", "SG"))
	assert.Equal(t, 100.0, PartialRatio("Kookaburra", "Kookaburra Ghost Pro"))
	assert.Equal(t, 0.0, PartialRatio("", "SG"))
	assert.InDelta(t, 66.667, PartialRatio("SS", "SG RP"), 0.01)
	// Case-sensitive like the default scorer
	assert.Less(t, PartialRatio("sg rp 17", "SG"), 75.0)
}

func TestCosineScores(t *testing.T) {
	scores := CosineScores("NICOLLS GRAY bat", []string{"SG", "Kookaburra", "Gray-Nicolls", "MRF"})

	assert.Len(t, scores, 4)
	assert.Equal(t, 0.0, scores[0])
	assert.GreaterOrEqual(t, scores[2], 0.70)
}

func TestResolve_FuzzyWithoutModel(t *testing.T) {
	model := &fakeCompleter{answer: "Kookaburra"}
	r := newResolver(DefaultBrands, model)

	name, stage := r.ResolveStage(context.Background(), "SG RP 17 English Willow Cricket Bat")

	assert.Equal(t, "SG", name)
	assert.Equal(t, StageFuzzy, stage)
	assert.Equal(t, 0, model.calls)
}

func TestResolve_CosineFallback(t *testing.T) {
	model := &fakeCompleter{}
	r := newResolver(entries("SG", "Kookaburra", "Gray-Nicolls", "MRF"), model)

	name, stage := r.ResolveStage(context.Background(), "NICOLLS GRAY bat")

	assert.Equal(t, "Gray-Nicolls", name)
	assert.Equal(t, StageCosine, stage)
	assert.Equal(t, 0, model.calls)
}

func TestResolve_ModelFallback(t *testing.T) {
	model := &fakeCompleter{answer: "  Kookaburra\n"}
	r := newResolver(entries("SG", "Kookaburra", "MRF"), model)

	name, stage := r.ResolveStage(context.Background(), "Ghost bat")

	assert.Equal(t, "Kookaburra", name)
	assert.Equal(t, StageModel, stage)
	assert.Equal(t, 1, model.calls)
}

func TestResolve_RejectsUnlistedModelAnswer(t *testing.T) {
	r := newResolver(entries("SG", "Kookaburra", "MRF"), &fakeCompleter{answer: "Nike"})

	name, ok := r.Resolve(context.Background(), "Ghost bat")

	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestResolve_ModelErrorIsNoMatch(t *testing.T) {
	r := newResolver(entries("SG", "Kookaburra"), &fakeCompleter{err: errors.New("429")})

	_, ok := r.Resolve(context.Background(), "Ghost bat")

	assert.False(t, ok)
}

func TestResolve_NoModel(t *testing.T) {
	r := newResolver(entries("SG", "Kookaburra"), nil)

	_, ok := r.Resolve(context.Background(), "Ghost bat")

	assert.False(t, ok)
}

func TestTable_SiteScope(t *testing.T) {
	table := NewTable(append(DefaultBrands, types.BrandEntry{Name: "SG", Site: "https://dup.example/"}))

	assert.Equal(t, "shop.teamsg.in", table.SiteScope("SG"))
	assert.Equal(t, "in.puma.com/in/en/mens/mens-sports/cricket", table.SiteScope("Puma"))
	assert.Equal(t, "", table.SiteScope("Unknown"))
	assert.Len(t, table.Names(), len(DefaultBrands))
}
