package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultLibreTranslateURL is the default base URL for a self-hosted
// LibreTranslate server.
const DefaultLibreTranslateURL = "http://localhost:5000"

// LibreTranslateProvider translates through the LibreTranslate HTTP API,
// sending a whole batch as one request.
type LibreTranslateProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewLibreTranslateProvider creates a LibreTranslate provider.
func NewLibreTranslateProvider(config *Config) (*LibreTranslateProvider, error) {
	baseURL := strings.TrimRight(config.LibreTranslateURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("LibreTranslate URL is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &LibreTranslateProvider{
		baseURL:    baseURL,
		apiKey:     config.LibreTranslateKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type libreTranslateRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText []string `json:"translatedText"`
	Error          string   `json:"error"`
}

// TranslateBatch implements Translator.
func (p *LibreTranslateProvider) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	return translateNonBlank(p.Name(), texts, func(batch []string) ([]string, error) {
		return p.send(ctx, batch, sourceLang, targetLang)
	})
}

func (p *LibreTranslateProvider) send(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	payload := libreTranslateRequest{
		Q:      texts,
		Source: sourceLang,
		Target: targetLang,
		Format: "text",
		APIKey: p.apiKey,
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&payload); err != nil {
		return nil, serviceError(p.Name(), 0, "encode request: %w", err)
	}

	url := p.baseURL + "/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, serviceError(p.Name(), 0, "create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, serviceError(p.Name(), 0, "request failed: %w", err)
	}
	defer resp.Body.Close()

	p.logger.WithFields(logrus.Fields{
		"provider":    p.Name(),
		"target_lang": targetLang,
		"texts":       len(texts),
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("Translation request completed")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, serviceError(p.Name(), resp.StatusCode, "unexpected response: %s", strings.TrimSpace(string(body)))
	}

	var ltResp libreTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ltResp); err != nil {
		return nil, serviceError(p.Name(), resp.StatusCode, "decode response: %w", err)
	}
	if ltResp.Error != "" {
		return nil, serviceError(p.Name(), resp.StatusCode, "provider error: %s", ltResp.Error)
	}

	return ltResp.TranslatedText, nil
}

// Name returns the provider name
func (p *LibreTranslateProvider) Name() string {
	return ProviderLibreTranslate
}

// IsAvailable checks if the provider is properly configured
func (p *LibreTranslateProvider) IsAvailable() error {
	if p.baseURL == "" {
		return fmt.Errorf("LibreTranslate URL not configured")
	}
	return nil
}
