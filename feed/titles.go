package feed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TitleColumn is the input CSV column holding product titles
const TitleColumn = "Title"

// ReadTitles reads product titles from path: the Title column of a .csv
// file, otherwise one title per line. Blank titles are skipped.
func ReadTitles(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readTitlesCSV(file)
	}
	return readTitleLines(file)
}

func readTitlesCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == TitleColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no %q column in input", TitleColumn)
	}

	var titles []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input row: %w", err)
		}
		if col < len(row) {
			if title := strings.TrimSpace(row[col]); title != "" {
				titles = append(titles, title)
			}
		}
	}
	return titles, nil
}

func readTitleLines(r io.Reader) ([]string, error) {
	var titles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if title := strings.TrimSpace(scanner.Text()); title != "" {
			titles = append(titles, title)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read titles: %w", err)
	}
	return titles, nil
}

// SplitTitles splits a comma-separated title list
func SplitTitles(list string) []string {
	var titles []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}
