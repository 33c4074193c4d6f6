package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/decktranslate/internal"
)

// RunFunc runs a subcommand.
type RunFunc func(cmd *cobra.Command, args []string) error

// Handlers are the run functions of the subcommands.
type Handlers struct {
	Translate RunFunc
	Import    RunFunc
	Status    RunFunc
	Models    RunFunc
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, handlers Handlers) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "decktranslate",
		Short: "Resumable vocabulary deck translator",
		Long: `decktranslate fills per-language meaning and example columns of a
vocabulary CSV through a translation provider. Progress is checkpointed
after every chunk, so an interrupted run resumes where it stopped.

Examples:
  decktranslate translate vocab.csv                    # Translate to vi, th and id in place
  decktranslate translate vocab.csv --targets ja,ko    # Choose target languages
  decktranslate status vocab.csv                       # Show checkpoint progress
  decktranslate import cards.csv --deck-id D --mapping "단어=front,뜻=back"`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.decktranslate.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		createTranslateCommand(flags, handlers.Translate),
		createImportCommand(flags, handlers.Import),
		createStatusCommand(flags, handlers.Status),
		createModelsCommand(handlers.Models),
	)
	return rootCmd
}

func createTranslateCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [input.csv]",
		Short: "Translate the meaning and example columns of a vocabulary CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	setupTranslateFlags(cmd, flags)
	return cmd
}

func setupTranslateFlags(cmd *cobra.Command, flags *Flags) {
	f := cmd.Flags()
	f.StringVarP(&flags.Input, "input", "i", "", "Input CSV file")
	f.StringVarP(&flags.Output, "output", "o", "", "Output CSV file (default: overwrite the input)")
	f.StringVar(&flags.Checkpoint, "checkpoint", "", "Checkpoint file (default: "+defaultCheckpointHint+")")
	f.StringSliceVarP(&flags.Targets, "targets", "t", flags.Targets, "Target language codes")
	f.StringVar(&flags.SourceLang, "source-lang", flags.SourceLang, "Source language code")
	f.StringVar(&flags.MeaningColumn, "meaning-column", flags.MeaningColumn, "Source column holding the meanings")
	f.StringVar(&flags.ExampleColumn, "example-column", flags.ExampleColumn, "Source column holding the example sentences")
	f.IntVar(&flags.ChunkSize, "chunk-size", flags.ChunkSize, "Rows per provider request")
	f.IntVar(&flags.MaxAttempts, "max-attempts", flags.MaxAttempts, "Batch attempts before translating items one by one")
	f.DurationVar(&flags.BaseDelay, "base-delay", flags.BaseDelay, "Backoff after failed attempt n is n times this delay")
	f.DurationVar(&flags.PaceDelay, "pace-delay", flags.PaceDelay, "Delay between item requests after a batch gave up")
	f.DurationVar(&flags.CallDelay, "call-delay", flags.CallDelay, "Delay between the meaning and example requests of a chunk")
	f.BoolVar(&flags.DiscardCheckpoint, "discard-checkpoint", false, "Move an unreadable checkpoint to archive/ and start over")
	f.BoolVar(&flags.RetryFailed, "retry-failed", false, "Request cells again that failed in an earlier run")
	f.StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")

	// Provider flags
	f.StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Translation provider: libretranslate, openai or gemini")
	f.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Provider request timeout")
	f.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model (see 'decktranslate models')")
	f.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "OpenAI compatible API base URL")
	f.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")
	f.StringVar(&flags.GeminiBaseURL, "gemini-base-url", "", "Gemini API base URL")
	f.StringVar(&flags.LibreTranslateURL, "libretranslate-url", flags.LibreTranslateURL, "LibreTranslate server URL")
	f.BoolVar(&flags.Breaker, "breaker", flags.Breaker, "Stop calling a provider that keeps failing for a while")
	f.Uint32Var(&flags.BreakerThreshold, "breaker-threshold", flags.BreakerThreshold, "Consecutive failures that open the breaker")
	f.DurationVar(&flags.BreakerTimeout, "breaker-timeout", flags.BreakerTimeout, "How long an open breaker rejects calls")

	bindFlagsToViper(cmd.Flags(), map[string]string{
		"input":              "translate.input",
		"output":             "translate.output",
		"checkpoint":         "translate.checkpoint",
		"targets":            "translate.targets",
		"source-lang":        "translate.source_lang",
		"meaning-column":     "translate.meaning_column",
		"example-column":     "translate.example_column",
		"chunk-size":         "translate.chunk_size",
		"call-delay":         "translate.call_delay",
		"discard-checkpoint": "translate.discard_checkpoint",
		"retry-failed":       "translate.retry_failed",
		"metrics-file":       "metrics.file",
		"max-attempts":       "retry.max_attempts",
		"base-delay":         "retry.base_delay",
		"pace-delay":         "retry.pace_delay",
		"provider":           "provider.name",
		"timeout":            "provider.timeout",
		"openai-model":       "openai.model",
		"openai-base-url":    "openai.base_url",
		"gemini-model":       "gemini.model",
		"gemini-base-url":    "gemini.base_url",
		"libretranslate-url": "libretranslate.url",
		"breaker":            "breaker.enabled",
		"breaker-threshold":  "breaker.threshold",
		"breaker-timeout":    "breaker.timeout",
	})
}

func createImportCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk import cards from a JSON export or a CSV file into a deck",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	f := cmd.Flags()
	f.StringVar(&flags.Database, "db", flags.Database, "Card database file")
	f.StringVar(&flags.DeckID, "deck-id", "", "Target deck ID")
	f.StringVar(&flags.DeckName, "deck-name", "", "Deck name when creating the deck")
	f.BoolVar(&flags.CreateDeck, "create-deck", false, "Create the deck if it does not exist")
	f.StringVar(&flags.UserID, "user-id", "", "User ID")
	f.StringVar(&flags.TemplateID, "template-id", "", "Card template ID")
	f.StringVar(&flags.Mapping, "mapping", "", "CSV column mapping (e.g., 'front=front,back=back')")
	f.IntVar(&flags.BatchSize, "batch-size", flags.BatchSize, "Cards inserted per batch")

	bindFlagsToViper(cmd.Flags(), map[string]string{
		"db":          "import.db",
		"deck-id":     "import.deck_id",
		"user-id":     "import.user_id",
		"template-id": "import.template_id",
		"batch-size":  "import.batch_size",
	})
	return cmd
}

func createStatusCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [input.csv]",
		Short: "Show the progress recorded in a checkpoint",
		Long: `Show the progress recorded in a checkpoint.

With an input file the checkpoint next to it is read, the same file
"translate" writes for that input. Without one --checkpoint is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}
	cmd.Flags().StringVar(&flags.StatusCheckpoint, "checkpoint", flags.StatusCheckpoint, "Checkpoint file (overrides the one next to input.csv)")
	return cmd
}

func createModelsCommand(run RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List OpenAI chat models available for the openai provider",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
}

func bindFlagsToViper(fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		viper.BindPFlag(key, fs.Lookup(flag))
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".decktranslate" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".decktranslate")
	}

	// Environment variables
	viper.SetEnvPrefix("DECKTRANSLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.api_key")
}

// GetLibreTranslateKey retrieves the optional LibreTranslate API key
func GetLibreTranslateKey() string {
	if key := os.Getenv("LIBRETRANSLATE_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("libretranslate.api_key")
}
