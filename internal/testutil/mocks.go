package testutil

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/decktranslate/internal/translation"
)

// TranslateCall records one TranslateBatch invocation.
type TranslateCall struct {
	Texts      []string
	SourceLang string
	TargetLang string
}

// MockTranslator is a scriptable translation.Translator. By default every
// text translates to "<target>:<text>" and blank texts to "".
type MockTranslator struct {
	// Translations overrides the default result per source text
	Translations map[string]string

	// FailFirst fails the first n calls
	FailFirst int

	// FailTexts fails every call whose batch contains one of these texts
	FailTexts map[string]bool

	// FailAll fails every call
	FailAll bool

	// OnCall runs before each call with the 1-based call number. A non-nil
	// return is used as the call's error.
	OnCall func(n int, texts []string, targetLang string) error

	Calls []TranslateCall
}

// TranslateBatch implements translation.Translator.
func (m *MockTranslator) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	m.Calls = append(m.Calls, TranslateCall{
		Texts:      append([]string(nil), texts...),
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	n := len(m.Calls)

	if m.OnCall != nil {
		if err := m.OnCall(n, texts, targetLang); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailAll || n <= m.FailFirst {
		return nil, m.unavailable(n)
	}
	for _, text := range texts {
		if m.FailTexts[text] {
			return nil, m.unavailable(n)
		}
	}

	results := make([]string, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if translated, ok := m.Translations[text]; ok {
			results[i] = translated
			continue
		}
		results[i] = targetLang + ":" + text
	}
	return results, nil
}

func (m *MockTranslator) unavailable(n int) error {
	return &translation.ServiceError{
		Provider:   m.Name(),
		StatusCode: 503,
		Err:        fmt.Errorf("mock failure on call %d", n),
	}
}

// Name returns the provider name
func (m *MockTranslator) Name() string {
	return "mock"
}

// IsAvailable always succeeds
func (m *MockTranslator) IsAvailable() error {
	return nil
}

// CallCount returns the number of calls for targetLang.
func (m *MockTranslator) CallCount(targetLang string) int {
	count := 0
	for _, call := range m.Calls {
		if call.TargetLang == targetLang {
			count++
		}
	}
	return count
}

// Reset forgets recorded calls and scripted failures.
func (m *MockTranslator) Reset() {
	m.Calls = nil
	m.FailFirst = 0
	m.FailTexts = nil
	m.FailAll = false
	m.OnCall = nil
}
