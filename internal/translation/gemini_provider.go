package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiProvider translates batches with a Gemini model through the
// Gemini API, asking for a JSON reply.
type GeminiProvider struct {
	apiKey string
	model  string
	client *genai.Client
	logger *logrus.Logger
}

// NewGeminiProvider creates a new Gemini translation provider
func NewGeminiProvider(config *Config) (*GeminiProvider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.GeminiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if config.GeminiBaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.GeminiBaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &GeminiProvider{
		apiKey: config.GeminiKey,
		model:  model,
		client: client,
		logger: logger,
	}, nil
}

// TranslateBatch implements Translator.
func (p *GeminiProvider) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	return translateNonBlank(p.Name(), texts, func(batch []string) ([]string, error) {
		return p.send(ctx, batch, sourceLang, targetLang)
	})
}

func (p *GeminiProvider) send(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	prompt, err := userPrompt(texts)
	if err != nil {
		return nil, serviceError(p.Name(), 0, "%w", err)
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(sourceLang, targetLang), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.3),
	}

	startTime := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, &ServiceError{Provider: p.Name(), StatusCode: geminiStatus(err), Err: fmt.Errorf("Gemini API error: %w", err)}
	}

	p.logger.WithFields(logrus.Fields{
		"provider":    p.Name(),
		"model":       p.model,
		"target_lang": targetLang,
		"texts":       len(texts),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("Translation request completed")

	content := resp.Text()
	if content == "" {
		return nil, serviceError(p.Name(), 0, "no translation returned")
	}

	translations, err := parseTranslations(content)
	if err != nil {
		return nil, serviceError(p.Name(), 0, "malformed response: %w", err)
	}
	return translations, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// IsAvailable checks if the provider is properly configured
func (p *GeminiProvider) IsAvailable() error {
	if p.apiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}
