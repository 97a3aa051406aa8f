package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopify-feed/internal/types"
)

type scriptedModel struct {
	answers []string
	errs    []error
	prompts []string
}

func (m *scriptedModel) Complete(ctx context.Context, system, user string) (string, error) {
	i := len(m.prompts)
	m.prompts = append(m.prompts, user)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if i < len(m.answers) {
		return m.answers[i], err
	}
	return "", err
}

func newTestEnricher(model Completer, chunkSize int) *Enricher {
	config := types.DefaultConfig()
	config.LLMDelay = time.Millisecond
	config.LLMChunkSize = chunkSize
	return NewEnricher(model, config, logrus.New())
}

func TestChunkRecords(t *testing.T) {
	records := []types.ProductRecord{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	single, err := ChunkRecords(records, 1_000_000)
	require.NoError(t, err)
	require.Len(t, single, 1)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(single[0]), &rows))
	assert.Len(t, rows, 3)
	assert.Equal(t, "b", rows[1]["Title"])

	split, err := ChunkRecords(records, 10)
	require.NoError(t, err)
	assert.Len(t, split, 3)
	for _, chunk := range split {
		assert.True(t, json.Valid([]byte(chunk)))
	}

	empty, err := ChunkRecords(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEnrich_ParsesArraysObjectsAndRepairs(t *testing.T) {
	model := &scriptedModel{answers: []string{
		"Here is the processed JSON array:\n```json\n[{\"Title\": \"SG RP 17\", \"Tags\": [\"bats\", \"sg\"], \"Variant Price\": 24999,},]\n```",
		`{"Title": "Kookaburra Ghost", "Mystery": "x"}`,
		`"[{\"Title\": \"MRF Genius\"}]"`,
	}}
	records := []types.ProductRecord{{Title: "one"}, {Title: "two"}, {Title: "three"}}

	out, err := newTestEnricher(model, 10).Enrich(context.Background(), records)

	require.NoError(t, err)
	require.Len(t, model.prompts, 3)
	assert.Contains(t, model.prompts[0], "part 1 of 3")
	require.Len(t, out, 3)
	assert.Equal(t, "SG RP 17", out[0].Title)
	assert.Equal(t, []string{"bats", "sg"}, out[0].Tags)
	assert.Equal(t, "24999", out[0].VariantPrice)
	assert.Equal(t, "Kookaburra Ghost", out[1].Title)
	assert.Equal(t, "MRF Genius", out[2].Title)
}

func TestEnrich_MalformedChunkContributesNothing(t *testing.T) {
	model := &scriptedModel{
		answers: []string{"I could not find any product.", `[{"Title": "ok"}]`, ""},
		errs:    []error{nil, nil, errors.New("rate limited")},
	}
	records := []types.ProductRecord{{Title: "one"}, {Title: "two"}, {Title: "three"}}

	out, err := newTestEnricher(model, 10).Enrich(context.Background(), records)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].Title)
}

func TestEnrich_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEnricher(&scriptedModel{}, 10).Enrich(ctx, []types.ProductRecord{{Title: "one"}})

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEnricher_Parse(t *testing.T) {
	e := newTestEnricher(&scriptedModel{}, 10)

	_, err := e.parse(`42`)
	assert.True(t, errors.Is(err, types.ErrModelResponseMalformed))

	recs, err := e.parse(`[{"Title": "x", "Body (HTML)": "<p>y</p>"}, "junk"]`)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "<p>y</p>", recs[0].BodyHTML)
	assert.True(t, strings.HasPrefix(recs[0].BodyHTML, "<p>"))
}
