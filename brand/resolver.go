package brand

import (
	"context"
	"fmt"
	"strings"

	"shopify-feed/internal/types"
)

const classifyPrompt = `You are a product and brand expert.
Identify the brand for the following product:
Product: "%s"
Possible brands: %s
Respond with ONLY the brand name from the list.`

// Completer answers a system/user prompt pair with text
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Stage names the step that produced a match
type Stage string

const (
	StageFuzzy  Stage = "fuzzy"
	StageCosine Stage = "cosine"
	StageModel  Stage = "model"
	StageNone   Stage = "none"
)

// Resolver maps free-text product titles to a brand of the table
type Resolver struct {
	table           *Table
	model           Completer
	fuzzyThreshold  float64
	cosineThreshold float64
	logger          types.Logger
}

// NewResolver creates a resolver. model may be nil, which disables the
// language-model fallback.
func NewResolver(table *Table, model Completer, config *types.Config, logger types.Logger) *Resolver {
	return &Resolver{
		table:           table,
		model:           model,
		fuzzyThreshold:  config.FuzzyThreshold,
		cosineThreshold: config.CosineThreshold,
		logger:          logger,
	}
}

// Resolve returns the brand of title and whether one was found
func (r *Resolver) Resolve(ctx context.Context, title string) (string, bool) {
	name, stage := r.ResolveStage(ctx, title)
	return name, stage != StageNone
}

// ResolveStage is Resolve that also reports which step matched
func (r *Resolver) ResolveStage(ctx context.Context, title string) (string, Stage) {
	names := r.table.Names()
	if len(names) == 0 || strings.TrimSpace(title) == "" {
		return "", StageNone
	}

	bestIdx, bestScore := -1, -1.0
	for i, name := range names {
		if score := PartialRatio(title, name); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore >= r.fuzzyThreshold {
		r.logger.Debugf("Brand %q matched %q by fuzzy score %.1f", names[bestIdx], title, bestScore)
		return names[bestIdx], StageFuzzy
	}

	bestIdx, bestSim := -1, -1.0
	for i, sim := range CosineScores(title, names) {
		if sim > bestSim {
			bestIdx, bestSim = i, sim
		}
	}
	if bestSim >= r.cosineThreshold {
		r.logger.Debugf("Brand %q matched %q by cosine similarity %.2f", names[bestIdx], title, bestSim)
		return names[bestIdx], StageCosine
	}

	if r.model == nil {
		return "", StageNone
	}

	prompt := fmt.Sprintf(classifyPrompt, title, strings.Join(names, ", "))
	answer, err := r.model.Complete(ctx, prompt, title)
	if err != nil {
		r.logger.Warnf("Brand classification failed for %q: %v", title, err)
		return "", StageNone
	}

	answer = strings.TrimSpace(answer)
	if !r.table.Has(answer) {
		r.logger.Debugf("Discarding unlisted brand answer %q for %q", answer, title)
		return "", StageNone
	}
	return answer, StageModel
}
