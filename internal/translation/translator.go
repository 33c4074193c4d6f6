package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/decktranslate/internal"
)

// Provider names.
const (
	ProviderLibreTranslate = "libretranslate"
	ProviderOpenAI         = "openai"
	ProviderGemini         = "gemini"
)

// Translator translates ordered batches of text.
type Translator interface {
	// TranslateBatch returns one translation per input, in input order.
	// Blank inputs translate to "" without reaching the provider.
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured
	IsAvailable() error
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Timeout  time.Duration

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	LibreTranslateURL string
	LibreTranslateKey string

	Breaker BreakerSettings
	Logger  *logrus.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderLibreTranslate,
		Timeout:           2 * time.Minute,
		OpenAIModel:       "gpt-4o-mini",
		GeminiModel:       "gemini-2.0-flash",
		LibreTranslateURL: DefaultLibreTranslateURL,
		Breaker:           DefaultBreakerSettings(),
	}
}

// NewTranslator creates the configured provider, wrapped in a circuit
// breaker when enabled. Configuration problems are *internal.ConfigError.
func NewTranslator(config *Config) (Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	var (
		provider Translator
		err      error
	)
	switch config.Provider {
	case ProviderLibreTranslate:
		provider, err = NewLibreTranslateProvider(config)
	case ProviderOpenAI:
		provider, err = NewOpenAIProvider(config)
	case ProviderGemini:
		provider, err = NewGeminiProvider(config)
	default:
		err = fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
	if err != nil {
		return nil, internal.NewConfigError("provider", err)
	}

	if config.Breaker.Enabled {
		provider = NewBreaker(provider, config.Breaker, config.Logger)
	}
	return provider, nil
}

// translateNonBlank sends only the non-blank texts to send and spreads the
// results back over the original positions. send must return exactly one
// result per text it receives.
func translateNonBlank(provider string, texts []string, send func([]string) ([]string, error)) ([]string, error) {
	results := make([]string, len(texts))

	var (
		pending   []string
		positions []int
	)
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pending = append(pending, text)
		positions = append(positions, i)
	}
	if len(pending) == 0 {
		return results, nil
	}

	translated, err := send(pending)
	if err != nil {
		return nil, err
	}
	if len(translated) != len(pending) {
		return nil, serviceError(provider, 0, "malformed response: got %d translations for %d texts", len(translated), len(pending))
	}

	for i, pos := range positions {
		results[pos] = strings.TrimSpace(translated[i])
	}
	return results, nil
}

// systemPrompt is shared by the LLM backed providers.
func systemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(`You are a professional translator for a vocabulary study app.
Translate every string of the JSON array you receive from language %q to language %q.
Keep vocabulary meanings short, translate example sentences naturally.
Respond with a JSON object of the form {"translations": ["..."]} holding exactly one
translation per input string, in the same order. Do not add explanations.`, sourceLang, targetLang)
}

// userPrompt encodes the texts as a JSON array.
func userPrompt(texts []string) (string, error) {
	data, err := json.Marshal(texts)
	if err != nil {
		return "", fmt.Errorf("encoding texts: %w", err)
	}
	return string(data), nil
}

// parseTranslations extracts the translations array from an LLM reply. A
// bare JSON array and Markdown code fences are tolerated.
func parseTranslations(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var wrapped struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && wrapped.Translations != nil {
		return wrapped.Translations, nil
	}

	var bare []string
	if err := json.Unmarshal([]byte(content), &bare); err != nil {
		return nil, fmt.Errorf("response is not a translations list: %w", err)
	}
	return bare, nil
}
