package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/decktranslate/internal"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMalformed is returned for rows that cannot be mapped onto the header.
var ErrMalformed = errors.New("malformed dataset")

// Dataset is an in-memory CSV table with a header row.
type Dataset struct {
	Header []string
	Rows   [][]string

	// BOM is set when the source started with a UTF-8 byte order mark; Write
	// emits it again.
	BOM bool

	columns map[string]int
}

// Load reads a CSV file. A UTF-8 byte order mark is remembered and short rows
// are padded to the header width.
func Load(filename string) (*Dataset, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	ds, err := Parse(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	ds.BOM = bytes.HasPrefix(content, utf8BOM)
	return ds, nil
}

// Parse reads CSV content whose first record is the header. A row with more
// fields than the header is rejected with ErrMalformed.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	ds := &Dataset{Header: records[0]}
	ds.reindex()

	for i, record := range records[1:] {
		if len(record) > len(ds.Header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrMalformed, i+2, len(record), len(ds.Header))
		}
		row := make([]string, len(ds.Header))
		copy(row, record)
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func (d *Dataset) reindex() {
	d.columns = make(map[string]int, len(d.Header))
	for i, name := range d.Header {
		if _, dup := d.columns[name]; !dup {
			d.columns[name] = i
		}
	}
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the header contains name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Column returns a copy of all values of a column in row order.
func (d *Dataset) Column(name string) ([]string, error) {
	idx, ok := d.columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}

	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// EnsureColumn appends an empty column when name is not in the header.
// Existing columns and their values are left untouched.
func (d *Dataset) EnsureColumn(name string) {
	if d.HasColumn(name) {
		return
	}

	d.Header = append(d.Header, name)
	d.columns[name] = len(d.Header) - 1
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], "")
	}
}

// Get returns the value at row/column, or "" when either does not exist.
func (d *Dataset) Get(row int, column string) string {
	idx, ok := d.columns[column]
	if !ok || row < 0 || row >= len(d.Rows) {
		return ""
	}
	return d.Rows[row][idx]
}

// Set stores a value at row/column.
func (d *Dataset) Set(row int, column, value string) error {
	idx, ok := d.columns[column]
	if !ok {
		return fmt.Errorf("column %q not found", column)
	}
	if row < 0 || row >= len(d.Rows) {
		return fmt.Errorf("row %d out of range [0,%d)", row, len(d.Rows))
	}
	d.Rows[row][idx] = value
	return nil
}

// CountFilled returns the number of rows where every given column holds
// non-blank text.
func (d *Dataset) CountFilled(columns []string) int {
	filled := 0
	for row := range d.Rows {
		complete := true
		for _, column := range columns {
			if strings.TrimSpace(d.Get(row, column)) == "" {
				complete = false
				break
			}
		}
		if complete {
			filled++
		}
	}
	return filled
}

// Write encodes the dataset as CSV.
func (d *Dataset) Write(w io.Writer) error {
	if d.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write byte order mark: %w", err)
		}
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(d.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// Save writes the dataset to filename atomically; a failed save leaves any
// previous file untouched.
func (d *Dataset) Save(filename string) error {
	if err := internal.WriteFileAtomic(filename, 0644, d.Write); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}
