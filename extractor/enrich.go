package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"shopify-feed/internal/types"
	"shopify-feed/llm"
	"shopify-feed/utils"
)

// Completer answers a system/user prompt pair with text
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Enricher sends records to the language model in chunks and rebuilds them
// from its JSON answers
type Enricher struct {
	model     Completer
	chunkSize int
	limiter   *rate.Limiter
	logger    types.Logger
}

// NewEnricher creates an enricher; calls are spaced config.LLMDelay apart
func NewEnricher(model Completer, config *types.Config, logger types.Logger) *Enricher {
	every := rate.Inf
	if config.LLMDelay > 0 {
		every = rate.Every(config.LLMDelay)
	}
	chunkSize := config.LLMChunkSize
	if chunkSize <= 0 {
		chunkSize = 4000
	}
	return &Enricher{
		model:     model,
		chunkSize: chunkSize,
		limiter:   rate.NewLimiter(every, 1),
		logger:    logger,
	}
}

// Enrich returns the records the model produced for every chunk it answered
// with valid (or repairable) JSON. A chunk whose answer cannot be parsed
// contributes no records. Only cancellation is returned as an error.
func (e *Enricher) Enrich(ctx context.Context, records []types.ProductRecord) ([]types.ProductRecord, error) {
	chunks, err := ChunkRecords(records, e.chunkSize)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	var out []types.ProductRecord
	for i, chunk := range chunks {
		if err := e.limiter.Wait(ctx); err != nil {
			return out, err
		}

		e.logger.Infof("Enriching chunk %d/%d (length=%d)", i+1, len(chunks), len(chunk))
		prompt := llm.ProductDetailsPrompt(types.Header(), i+1, len(chunks), chunk)
		answer, err := e.model.Complete(ctx, llm.ColumnSystemPrompt, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			e.logger.Warnf("Model call failed for chunk %d: %v", i+1, err)
			continue
		}

		parsed, err := e.parse(answer)
		if err != nil {
			e.logger.Warnf("Dropping chunk %d: %v", i+1, err)
			continue
		}
		out = append(out, parsed...)
	}

	e.logger.Infof("Enrichment produced %d records from %d chunks in %v", len(out), len(chunks), time.Since(startTime))
	return out, nil
}

// parse accepts an array of rows, a single row, or either encoded as a JSON string
func (e *Enricher) parse(answer string) ([]types.ProductRecord, error) {
	var decoded interface{}
	repaired, err := utils.LenientUnmarshal(answer, &decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrModelResponseMalformed, err)
	}
	if repaired {
		e.logger.Debugf("Model answer needed JSON repair")
	}

	if s, ok := decoded.(string); ok {
		if _, err := utils.LenientUnmarshal(s, &decoded); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrModelResponseMalformed, err)
		}
	}

	var rows []interface{}
	switch v := decoded.(type) {
	case []interface{}:
		rows = v
	case map[string]interface{}:
		rows = []interface{}{v}
	default:
		return nil, fmt.Errorf("%w: unexpected %T", types.ErrModelResponseMalformed, decoded)
	}

	records := make([]types.ProductRecord, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		rec, unknown := types.RecordFromRow(row)
		if len(unknown) > 0 {
			e.logger.Debugf("Ignoring unknown model columns %v", unknown)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ChunkRecords serializes records as JSON arrays no longer than size
// characters each. Records are never split; a record larger than size gets
// a chunk of its own.
func ChunkRecords(records []types.ProductRecord, size int) ([]string, error) {
	var chunks []string
	var buf bytes.Buffer

	flush := func() {
		if buf.Len() > 0 {
			buf.WriteByte(']')
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for i := range records {
		data, err := json.Marshal(recordRow(&records[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}
		if buf.Len() > 0 && buf.Len()+1+len(data)+1 > size {
			flush()
		}
		if buf.Len() == 0 {
			buf.WriteByte('[')
		} else {
			buf.WriteByte(',')
		}
		buf.Write(data)
	}
	flush()
	return chunks, nil
}

// recordRow keys a record by column name, keeping list columns as arrays
func recordRow(rec *types.ProductRecord) map[string]interface{} {
	row := make(map[string]interface{}, len(types.Columns)+2)
	for _, c := range types.Columns {
		if c.List {
			row[c.Name] = types.SplitList(c.Get(rec))
			continue
		}
		row[c.Name] = c.Get(rec)
	}
	row["Source URL"] = rec.SourceURL
	row["Currency"] = rec.Currency
	return row
}
