package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/decktranslate/internal"
	"codeberg.org/snonux/decktranslate/internal/checkpoint"
	"codeberg.org/snonux/decktranslate/internal/cli"
	"codeberg.org/snonux/decktranslate/internal/importer"
	"codeberg.org/snonux/decktranslate/internal/metrics"
	"codeberg.org/snonux/decktranslate/internal/models"
	"codeberg.org/snonux/decktranslate/internal/processor"
	"codeberg.org/snonux/decktranslate/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags, cli.Handlers{
		Translate: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args)
		},
		Import: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, flags)
		},
		Status: func(cmd *cobra.Command, args []string) error {
			return runStatus(cli.StatusCheckpointPath(cmd, flags, args))
		},
		Models: func(cmd *cobra.Command, args []string) error {
			return models.NewLister(cli.GetOpenAIKey(), viper.GetString("openai.base_url")).
				ListAvailableModels(cmd.Context(), os.Stdout)
		},
	})

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cfgErr *internal.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newLogger() (*logrus.Logger, error) {
	return cli.NewLogger(viper.GetString("log.level"))
}

func runTranslate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		viper.Set("translate.input", args[0])
	}

	config, err := cli.ProcessorConfig()
	if err != nil {
		return err
	}

	translator, err := translation.NewTranslator(cli.TranslationConfig(logger))
	if err != nil {
		return err
	}

	m := metrics.New()
	store := checkpoint.NewStore(cli.CheckpointPath(config.InputFile), logger)
	proc := processor.NewProcessor(config, translator, store,
		processor.WithLogger(logger),
		processor.WithMetrics(m),
		processor.WithRetry(cli.RetryController(logger, m)),
	)

	report, runErr := proc.Run(cmd.Context())

	if path := viper.GetString("metrics.file"); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			logger.WithError(err).Warn("Failed to write metrics")
		}
	}

	if runErr != nil {
		if errors.Is(runErr, checkpoint.ErrCorrupt) {
			return fmt.Errorf("%w (rerun with --discard-checkpoint to start over)", runErr)
		}
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("interrupted, progress kept in %s: %w", store.Path(), runErr)
		}
		return runErr
	}

	report.Print(os.Stdout)
	return nil
}

func runImport(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	deckID := viper.GetString("import.deck_id")
	userID := viper.GetString("import.user_id")
	templateID := viper.GetString("import.template_id")
	if userID == "" || templateID == "" {
		return internal.NewConfigError("import", errors.New("--user-id and --template-id are required"))
	}
	if deckID == "" && !flags.CreateDeck {
		return internal.NewConfigError("deck-id", errors.New("--deck-id is required unless --create-deck is given"))
	}

	cards, err := importer.LoadFile(args[0], importer.ParseMapping(flags.Mapping))
	if err != nil {
		return err
	}
	fmt.Printf("Found %d cards\n", len(cards))
	if len(cards) == 0 {
		fmt.Println("No cards to import.")
		return nil
	}

	store, err := importer.OpenSQLite(viper.GetString("import.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	if flags.CreateDeck {
		deckID, err = store.CreateDeck(cmd.Context(), deckID, flags.DeckName)
		if err != nil {
			return err
		}
		logger.WithField("deck_id", deckID).Info("Using deck")
	}

	im := importer.NewImporter(store, viper.GetInt("import.batch_size"), logger)
	inserted, err := im.Import(cmd.Context(), cards, deckID, userID, templateID)
	if err != nil {
		return err
	}

	fmt.Printf("Done! Imported %d cards.\n", inserted)
	return nil
}

func runStatus(path string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	store := checkpoint.NewStore(path, logger)
	if !store.Exists() {
		fmt.Printf("No checkpoint at %s\n", store.Path())
		return nil
	}

	cp, err := store.Load()
	if err != nil {
		return err
	}

	return checkpoint.Summarize(store.Path(), cp).WriteYAML(os.Stdout)
}
