// Package checkpoint persists translation progress between runs. A
// checkpoint maps each target language to the translated meaning and
// example of every finished row, plus a completion flag.
package checkpoint

import (
	"sort"
	"strconv"
)

// Field names one of the two translated columns of a row.
type Field string

const (
	FieldMeaning Field = "meaning"
	FieldExample Field = "example"
)

// State is the lifecycle of a language within a run.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Progress holds the recorded translations of one language. Row indices
// are string encoded, matching the on-disk form.
type Progress struct {
	Meanings map[string]string `json:"meanings"`
	Examples map[string]string `json:"examples"`
	Complete bool              `json:"complete"`

	// Cells whose provider call failed and were recorded empty.
	FailedMeanings map[string]bool `json:"failed_meanings,omitempty"`
	FailedExamples map[string]bool `json:"failed_examples,omitempty"`
}

// NewProgress returns an empty Progress.
func NewProgress() *Progress {
	p := &Progress{}
	p.init()
	return p
}

func (p *Progress) init() {
	if p.Meanings == nil {
		p.Meanings = make(map[string]string)
	}
	if p.Examples == nil {
		p.Examples = make(map[string]string)
	}
}

func key(row int) string {
	return strconv.Itoa(row)
}

// Has reports whether both translations of row are recorded.
func (p *Progress) Has(row int) bool {
	k := key(row)
	_, hasMeaning := p.Meanings[k]
	_, hasExample := p.Examples[k]
	return hasMeaning && hasExample
}

// Get returns the recorded translations of row.
func (p *Progress) Get(row int) (meaning, example string) {
	k := key(row)
	return p.Meanings[k], p.Examples[k]
}

// Record stores both translations of row.
func (p *Progress) Record(row int, meaning, example string) {
	p.init()
	k := key(row)
	p.Meanings[k] = meaning
	p.Examples[k] = example
}

// MarkFailed flags a recorded cell as a substituted failure.
func (p *Progress) MarkFailed(field Field, row int) {
	switch field {
	case FieldMeaning:
		if p.FailedMeanings == nil {
			p.FailedMeanings = make(map[string]bool)
		}
		p.FailedMeanings[key(row)] = true
	case FieldExample:
		if p.FailedExamples == nil {
			p.FailedExamples = make(map[string]bool)
		}
		p.FailedExamples[key(row)] = true
	}
}

// IsFailed reports whether a cell was recorded as a failure.
func (p *Progress) IsFailed(field Field, row int) bool {
	switch field {
	case FieldMeaning:
		return p.FailedMeanings[key(row)]
	case FieldExample:
		return p.FailedExamples[key(row)]
	}
	return false
}

// FailedCount returns the number of failed cells.
func (p *Progress) FailedCount() int {
	return len(p.FailedMeanings) + len(p.FailedExamples)
}

// FailedRows returns the sorted row indices having at least one failed cell.
func (p *Progress) FailedRows() []int {
	set := make(map[int]bool)
	for _, m := range []map[string]bool{p.FailedMeanings, p.FailedExamples} {
		for k := range m {
			if row, err := strconv.Atoi(k); err == nil {
				set[row] = true
			}
		}
	}

	rows := make([]int, 0, len(set))
	for row := range set {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// DropFailed forgets every row that has a failed cell so a later run asks
// the provider again. The language loses its completion flag when anything
// was dropped. It returns the number of rows forgotten.
func (p *Progress) DropFailed() int {
	rows := p.FailedRows()
	for _, row := range rows {
		k := key(row)
		delete(p.Meanings, k)
		delete(p.Examples, k)
	}
	p.FailedMeanings = nil
	p.FailedExamples = nil
	if len(rows) > 0 {
		p.Complete = false
	}
	return len(rows)
}

// State derives the lifecycle state from what is recorded.
func (p *Progress) State() State {
	switch {
	case p.Complete:
		return StateComplete
	case len(p.Meanings) == 0 && len(p.Examples) == 0:
		return StatePending
	default:
		return StateInProgress
	}
}

// Checkpoint maps a language code to its progress.
type Checkpoint map[string]*Progress

// New returns an empty checkpoint.
func New() Checkpoint {
	return make(Checkpoint)
}

// Language returns the progress of code, creating it when absent.
func (c Checkpoint) Language(code string) *Progress {
	p, ok := c[code]
	if !ok || p == nil {
		p = NewProgress()
		c[code] = p
	}
	return p
}

// Codes returns the recorded language codes, sorted.
func (c Checkpoint) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
