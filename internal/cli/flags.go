package cli

import (
	"time"

	"codeberg.org/snonux/decktranslate/internal/batch"
	"codeberg.org/snonux/decktranslate/internal/checkpoint"
	"codeberg.org/snonux/decktranslate/internal/importer"
	"codeberg.org/snonux/decktranslate/internal/languages"
	"codeberg.org/snonux/decktranslate/internal/processor"
	"codeberg.org/snonux/decktranslate/internal/retry"
	"codeberg.org/snonux/decktranslate/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile  string
	LogLevel string

	// Translate flags
	Input             string
	Output            string
	Checkpoint        string
	Targets           []string
	SourceLang        string
	MeaningColumn     string
	ExampleColumn     string
	ChunkSize         int
	MaxAttempts       int
	BaseDelay         time.Duration
	PaceDelay         time.Duration
	CallDelay         time.Duration
	DiscardCheckpoint bool
	RetryFailed       bool
	MetricsFile       string

	// Provider flags
	Provider          string
	Timeout           time.Duration
	OpenAIModel       string
	OpenAIBaseURL     string
	GeminiModel       string
	GeminiBaseURL     string
	LibreTranslateURL string
	Breaker           bool
	BreakerThreshold  uint32
	BreakerTimeout    time.Duration

	// Import flags
	Database   string
	DeckID     string
	DeckName   string
	CreateDeck bool
	UserID     string
	TemplateID string
	Mapping    string
	BatchSize  int

	// Status flags
	StatusCheckpoint string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	processorDefaults := processor.DefaultConfig()
	translationDefaults := translation.DefaultConfig()

	return &Flags{
		LogLevel: "info",

		Targets:       append([]string(nil), languages.DefaultTargets...),
		SourceLang:    processorDefaults.SourceLang,
		MeaningColumn: processorDefaults.MeaningColumn,
		ExampleColumn: processorDefaults.ExampleColumn,
		ChunkSize:     batch.DefaultChunkSize,
		MaxAttempts:   retry.DefaultMaxAttempts,
		BaseDelay:     retry.DefaultBaseDelay,
		PaceDelay:     retry.DefaultPaceDelay,
		CallDelay:     processor.DefaultCallDelay,

		Provider:          translationDefaults.Provider,
		Timeout:           translationDefaults.Timeout,
		OpenAIModel:       translationDefaults.OpenAIModel,
		GeminiModel:       translationDefaults.GeminiModel,
		LibreTranslateURL: translationDefaults.LibreTranslateURL,
		Breaker:           translationDefaults.Breaker.Enabled,
		BreakerThreshold:  translationDefaults.Breaker.FailureThreshold,
		BreakerTimeout:    translationDefaults.Breaker.OpenTimeout,

		Database:  "decktranslate.db",
		BatchSize: importer.DefaultBatchSize,

		StatusCheckpoint: checkpoint.DefaultFileName,
	}
}
