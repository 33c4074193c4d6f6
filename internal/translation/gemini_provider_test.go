package translation

import "testing"

func TestNewGeminiProvider(t *testing.T) {
	_, err := NewGeminiProvider(&Config{})
	if err == nil || err.Error() != "Gemini API key is required" {
		t.Errorf("expected missing key error, got %v", err)
	}

	provider, err := NewGeminiProvider(&Config{GeminiKey: "test-key", GeminiModel: "gemini-2.5-flash"})
	if err != nil {
		t.Fatalf("NewGeminiProvider failed: %v", err)
	}
	if provider.Name() != "gemini" {
		t.Errorf("Name() = %q", provider.Name())
	}
	if provider.model != "gemini-2.5-flash" {
		t.Errorf("model = %q", provider.model)
	}
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() = %v", err)
	}
}
