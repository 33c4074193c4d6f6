package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/decktranslate/internal"
)

// Card is one card to import.
type Card struct {
	FieldValues map[string]string `json:"field_values"`
	Tags        []string          `json:"tags"`
}

// IsBlank reports whether every field value is empty or whitespace.
func (c Card) IsBlank() bool {
	for _, v := range c.FieldValues {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// tagColumns are checked in order for a card's tags.
var tagColumns = []string{"태그", "tags"}

// LoadFile loads cards from a .json or .csv file. CSV files need a column
// mapping.
func LoadFile(path string, mapping map[string]string) ([]Card, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return LoadJSON(path)
	case ".csv":
		if len(mapping) == 0 {
			return nil, internal.NewConfigError("mapping", errors.New("a column mapping is required for CSV files"))
		}
		return LoadCSV(path, mapping)
	default:
		return nil, internal.NewConfigError("file", fmt.Errorf("unsupported file type: %s", ext))
	}
}

// LoadJSON loads cards from a JSON export of the form {"cards": [...]}.
func LoadJSON(path string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var export struct {
		Cards *[]Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if export.Cards == nil {
		return nil, fmt.Errorf("%s must contain a \"cards\" array", path)
	}

	cards := *export.Cards
	for i := range cards {
		if cards[i].FieldValues == nil {
			cards[i].FieldValues = make(map[string]string)
		}
		if cards[i].Tags == nil {
			cards[i].Tags = []string{}
		}
	}
	return cards, nil
}

// LoadCSV loads cards from a CSV file with a header. mapping maps CSV
// columns to card field keys; unmapped columns are ignored.
func LoadCSV(path string, mapping map[string]string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cards, err := parseCSV(bytes.NewReader(data), mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cards, nil
}

func parseCSV(r io.Reader, mapping map[string]string) ([]Card, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []Card{}, nil
	}
	if err != nil {
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	cards := []Card{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		value := func(column string) (string, bool) {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return "", false
			}
			return record[idx], true
		}

		card := Card{FieldValues: make(map[string]string), Tags: []string{}}
		for column, field := range mapping {
			if v, ok := value(column); ok {
				card.FieldValues[field] = v
			}
		}
		for _, column := range tagColumns {
			if raw, ok := value(column); ok {
				card.Tags = splitTags(raw)
				break
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseMapping parses "csv_col=field_key,csv_col2=field_key2". Malformed
// pairs are skipped.
func ParseMapping(s string) map[string]string {
	mapping := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(pair), "=")
		if len(parts) != 2 {
			continue
		}
		mapping[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return mapping
}
