package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider translates batches with an OpenAI chat model that answers
// in JSON.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
	logger *logrus.Logger
}

// NewOpenAIProvider creates a new OpenAI translation provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	model := config.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &OpenAIProvider{
		apiKey: config.OpenAIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// TranslateBatch implements Translator.
func (p *OpenAIProvider) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	return translateNonBlank(p.Name(), texts, func(batch []string) ([]string, error) {
		return p.send(ctx, batch, sourceLang, targetLang)
	})
}

func (p *OpenAIProvider) send(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	prompt, err := userPrompt(texts)
	if err != nil {
		return nil, serviceError(p.Name(), 0, "%w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(sourceLang, targetLang),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	startTime := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &ServiceError{Provider: p.Name(), StatusCode: openAIStatus(err), Err: fmt.Errorf("OpenAI API error: %w", err)}
	}

	p.logger.WithFields(logrus.Fields{
		"provider":    p.Name(),
		"model":       p.model,
		"target_lang": targetLang,
		"texts":       len(texts),
		"tokens":      resp.Usage.TotalTokens,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("Translation request completed")

	if len(resp.Choices) == 0 {
		return nil, serviceError(p.Name(), 0, "no translation returned")
	}

	translations, err := parseTranslations(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, serviceError(p.Name(), 0, "malformed response: %w", err)
	}
	return translations, nil
}

// openAIStatus digs the HTTP status out of a go-openai error.
func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}
