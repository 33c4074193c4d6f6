// Package languages describes the translation targets of a run: a language
// code and the two dataset columns its translations are written to.
package languages

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultTargets are the languages translated when none are configured.
var DefaultTargets = []string{"vi", "th", "id"}

// Target is one destination language with its output columns.
type Target struct {
	Code          string
	MeaningColumn string
	ExampleColumn string
}

// NewTarget builds a Target using the <code>_meaning / <code>_example
// column convention.
func NewTarget(code string) Target {
	return Target{
		Code:          code,
		MeaningColumn: code + "_meaning",
		ExampleColumn: code + "_example",
	}
}

// Columns returns the output columns of the target in order.
func (t Target) Columns() []string {
	return []string{t.MeaningColumn, t.ExampleColumn}
}

// Name returns the English display name of the target language,
// e.g. "Vietnamese" for "vi".
func (t Target) Name() string {
	return DisplayName(t.Code)
}

// Normalize lower-cases a code and checks that it is a well-formed BCP 47
// tag. Region subtags are kept ("zh-tw" stays "zh-tw").
func Normalize(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", "-")
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}
	if _, err := language.Parse(code); err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return code, nil
}

// ParseTargets validates codes and returns one Target per distinct code in
// the given order. The source language may not be a target.
func ParseTargets(codes []string, sourceLang string) ([]Target, error) {
	source, err := Normalize(sourceLang)
	if err != nil {
		return nil, fmt.Errorf("source language: %w", err)
	}

	seen := make(map[string]bool, len(codes))
	var targets []Target
	for _, raw := range codes {
		// Allow "vi,th" inside a single element as well
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			code, err := Normalize(part)
			if err != nil {
				return nil, err
			}
			if code == source {
				return nil, fmt.Errorf("target %q is the source language", code)
			}
			if seen[code] {
				continue
			}
			seen[code] = true
			targets = append(targets, NewTarget(code))
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no target languages configured")
	}
	return targets, nil
}

// DisplayName returns the English name of a language code, or the code
// itself when it has no known name.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
