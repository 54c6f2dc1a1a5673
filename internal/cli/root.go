package cli

import (
	"context"
	"fmt"

	"github.com/mark-chris/supportbot/internal/config"
	"github.com/mark-chris/supportbot/internal/embedding"
	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/mark-chris/supportbot/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Global flags
	knowledgePath string
	faqPath       string
	configFile    string
	outputFormat  string
	verbose       bool
	logLevel      string

	// Shared resources
	cfg               *config.Config
	log               = zap.NewNop()
	index             *knowledge.Index
	vectorizerFactory knowledge.VectorizerFactory
)

// skipKnowledge lists commands that run without a loaded knowledge base
var skipKnowledge = map[string]bool{
	"help":       true,
	"version":    true,
	"ingest":     true,
	"completion": true,
}

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "supportbot",
	Short: "Customer support bot CLI",
	Long: `supportbot - answer customer questions from a keyword knowledge base.

Replies come from keyword phrases whose terms all appear in the question, or
from the FAQ question most similar to it. Unanswerable questions get the
knowledge base's default reply.

Examples:
  # Ask a question
  supportbot ask "How do I reset my password?"

  # Use only similarity retrieval against an FAQ file
  supportbot ask --strategy similarity --faq data/faq.json "where are my invoices"

  # Validate the knowledge base
  supportbot validate

  # Start MCP server
  supportbot serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" {
			return nil
		}

		if err := initConfig(cmd); err != nil {
			return err
		}

		if skipKnowledge[cmd.Name()] {
			return nil
		}

		return loadIndex()
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the CLI with ctx available to commands
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&knowledgePath, "knowledge", "k", "",
		"Path to knowledge base file or directory (default: first of knowledge_base.json, data/knowledge_base.json)")
	rootCmd.PersistentFlags().StringVar(&faqPath, "faq", "",
		"Path to FAQ pairs file for similarity retrieval (default: derived from knowledge)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json",
		"Output format: json or text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Human-readable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig resolves configuration from flags, environment, the optional
// config file and defaults, then builds the logger.
func initConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := config.New()
	bindFlags(v, cmd.Flags(), map[string]string{
		"knowledge": "knowledge",
		"faq":       "faq",
		"log-level": "log.level",
		"strategy":  "strategy",
		"threshold": "threshold",
		"fallback":  "fallback",
	})

	loaded, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	l, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	log = l

	return nil
}

// bindFlags binds each flag present on fs to its config key. Unset flags
// leave lower-priority sources in effect.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// loadIndex loads the knowledge base and optional FAQ pairs into the index
func loadIndex() error {
	bot, err := knowledge.NewSupportBot(cfg.Bot(), knowledge.LoadFromDisk)
	if err != nil {
		return err
	}

	var pairs []knowledge.FAQPair
	if cfg.FAQ != "" {
		pairs, err = knowledge.LoadFAQPairs(cfg.FAQ, knowledge.DefaultFAQFields)
		if err != nil {
			return fmt.Errorf("failed to load FAQ: %w", err)
		}
	}

	vectorizerFactory, err = embedding.NewVectorizerFactory(cfg.Vectorizer, log)
	if err != nil {
		return fmt.Errorf("failed to configure vectorizer: %w", err)
	}

	index = knowledge.NewIndex()
	index.Build(bot.Knowledge(), pairs)

	log.Debug("loaded knowledge",
		zap.String("path", cfg.Knowledge),
		zap.Int("entries", index.Count()),
		zap.Int("faq_pairs", len(index.Pairs())),
		zap.Bool("explicit_faq", index.HasFAQ()),
	)
	return nil
}

// getFormat returns the output format based on flags
func getFormat() knowledge.OutputFormat {
	if outputFormat == "text" || verbose {
		return knowledge.FormatText
	}
	return knowledge.FormatJSON
}
