package checkpoint

import (
	"io"

	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/decktranslate/internal/languages"
)

// LanguageSummary describes the progress of one language.
type LanguageSummary struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	State       State  `yaml:"state"`
	Meanings    int    `yaml:"meanings"`
	Examples    int    `yaml:"examples"`
	FailedCells int    `yaml:"failed_cells"`
	FailedRows  []int  `yaml:"failed_rows,omitempty"`
}

// Summary is a human oriented view of a checkpoint.
type Summary struct {
	Path      string            `yaml:"path"`
	Languages []LanguageSummary `yaml:"languages"`
}

// Summarize builds a Summary with languages sorted by code.
func Summarize(path string, cp Checkpoint) Summary {
	summary := Summary{Path: path, Languages: []LanguageSummary{}}
	for _, code := range cp.Codes() {
		p := cp[code]
		summary.Languages = append(summary.Languages, LanguageSummary{
			Code:        code,
			Name:        languages.DisplayName(code),
			State:       p.State(),
			Meanings:    len(p.Meanings),
			Examples:    len(p.Examples),
			FailedCells: p.FailedCount(),
			FailedRows:  p.FailedRows(),
		})
	}
	return summary
}

// WriteYAML renders the summary as YAML.
func (s Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
