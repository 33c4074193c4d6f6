package cli

import (
	"errors"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/decktranslate/internal"
	"codeberg.org/snonux/decktranslate/internal/checkpoint"
	"codeberg.org/snonux/decktranslate/internal/languages"
	"codeberg.org/snonux/decktranslate/internal/metrics"
	"codeberg.org/snonux/decktranslate/internal/processor"
	"codeberg.org/snonux/decktranslate/internal/retry"
	"codeberg.org/snonux/decktranslate/internal/translation"
)

const defaultCheckpointHint = checkpoint.DefaultFileName + " next to the input"

// ProcessorConfig builds the pipeline configuration from flags, config
// file and environment.
func ProcessorConfig() (processor.Config, error) {
	config := processor.DefaultConfig()

	config.InputFile = viper.GetString("translate.input")
	if config.InputFile == "" {
		return config, internal.NewConfigError("input", errors.New("no input file given"))
	}
	config.OutputFile = viper.GetString("translate.output")
	if config.OutputFile == "" {
		config.OutputFile = config.InputFile
	}

	if v := viper.GetString("translate.source_lang"); v != "" {
		config.SourceLang = v
	}
	if v := viper.GetString("translate.meaning_column"); v != "" {
		config.MeaningColumn = v
	}
	if v := viper.GetString("translate.example_column"); v != "" {
		config.ExampleColumn = v
	}
	if viper.IsSet("translate.chunk_size") {
		config.ChunkSize = viper.GetInt("translate.chunk_size")
	}
	if viper.IsSet("translate.call_delay") {
		config.CallDelay = viper.GetDuration("translate.call_delay")
	}
	config.DiscardCheckpoint = viper.GetBool("translate.discard_checkpoint")
	config.RetryFailed = viper.GetBool("translate.retry_failed")

	codes := languages.DefaultTargets
	if viper.IsSet("translate.targets") {
		codes = viper.GetStringSlice("translate.targets")
	}
	targets, err := languages.ParseTargets(codes, config.SourceLang)
	if err != nil {
		return config, internal.NewConfigError("targets", err)
	}
	config.Targets = targets

	return config, nil
}

// CheckpointPath returns the checkpoint file for a run on input.
func CheckpointPath(input string) string {
	if path := viper.GetString("translate.checkpoint"); path != "" {
		return path
	}
	return filepath.Join(filepath.Dir(input), checkpoint.DefaultFileName)
}

// StatusCheckpointPath returns the checkpoint read by "status". An explicit
// --checkpoint wins; given an input file the checkpoint translate keeps
// beside it is used.
func StatusCheckpointPath(cmd *cobra.Command, flags *Flags, args []string) string {
	if len(args) == 0 || cmd.Flags().Changed("checkpoint") {
		return flags.StatusCheckpoint
	}
	return CheckpointPath(args[0])
}

// TranslationConfig builds the provider configuration.
func TranslationConfig(logger *logrus.Logger) *translation.Config {
	config := translation.DefaultConfig()
	config.Logger = logger

	if v := viper.GetString("provider.name"); v != "" {
		config.Provider = v
	}
	if viper.IsSet("provider.timeout") {
		config.Timeout = viper.GetDuration("provider.timeout")
	}

	config.OpenAIKey = GetOpenAIKey()
	if v := viper.GetString("openai.model"); v != "" {
		config.OpenAIModel = v
	}
	config.OpenAIBaseURL = viper.GetString("openai.base_url")

	config.GeminiKey = GetGeminiKey()
	if v := viper.GetString("gemini.model"); v != "" {
		config.GeminiModel = v
	}
	config.GeminiBaseURL = viper.GetString("gemini.base_url")

	if v := viper.GetString("libretranslate.url"); v != "" {
		config.LibreTranslateURL = v
	}
	config.LibreTranslateKey = GetLibreTranslateKey()

	if viper.IsSet("breaker.enabled") {
		config.Breaker.Enabled = viper.GetBool("breaker.enabled")
	}
	if viper.IsSet("breaker.threshold") {
		config.Breaker.FailureThreshold = viper.GetUint32("breaker.threshold")
	}
	if viper.IsSet("breaker.timeout") {
		config.Breaker.OpenTimeout = viper.GetDuration("breaker.timeout")
	}
	return config
}

// RetryController builds the retry controller.
func RetryController(logger *logrus.Logger, m *metrics.Metrics) *retry.Controller {
	c := retry.NewController(logger, m)
	if viper.IsSet("retry.max_attempts") {
		c.MaxAttempts = viper.GetInt("retry.max_attempts")
	}
	if viper.IsSet("retry.base_delay") {
		c.BaseDelay = viper.GetDuration("retry.base_delay")
	}
	if viper.IsSet("retry.pace_delay") {
		c.PaceDelay = viper.GetDuration("retry.pace_delay")
	}
	return c
}

// NewLogger creates the application logger for a level name.
func NewLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, internal.NewConfigError("log-level", err)
	}
	logger.SetLevel(parsed)
	return logger, nil
}
