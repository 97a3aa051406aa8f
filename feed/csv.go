package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shopify-feed/internal/types"
)

// WriteCSV writes the header row and one row per record to path, creating
// parent directories. Any failure is wrapped in types.ErrWrite.
func WriteCSV(records []types.ProductRecord, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create directory %s: %v", types.ErrWrite, dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", types.ErrWrite, path, err)
	}

	if err := Encode(file, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", types.ErrWrite, path, err)
	}
	return nil
}

// Encode writes records as CSV to w
func Encode(w io.Writer, records []types.ProductRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(types.Header()); err != nil {
		return fmt.Errorf("%w: %v", types.ErrWrite, err)
	}
	for i := range records {
		if err := writer.Write(records[i].Row()); err != nil {
			return fmt.Errorf("%w: %v", types.ErrWrite, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrWrite, err)
	}
	return nil
}

// ReadCSV reads a feed written by WriteCSV. Columns are matched by header
// name; unknown headers are ignored.
func ReadCSV(path string) ([]types.ProductRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]*types.Column, len(header))
	for i, name := range header {
		if c, ok := types.LookupColumn(name); ok {
			columns[i] = &c
		}
	}

	var records []types.ProductRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}

		var rec types.ProductRecord
		for i, cell := range row {
			if i < len(columns) && columns[i] != nil {
				columns[i].Set(&rec, cell)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
