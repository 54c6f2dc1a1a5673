package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	askStrategy    string
	askThreshold   float64
	askFallback    string
	askCountTokens bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer a customer question",
	Long: `Answer a question from the knowledge base.

The hybrid strategy (default) tries keyword phrases first and falls back to
the most similar FAQ question. A blank question asks for more detail.

Examples:
  # Ask a question
  supportbot ask "How do I reset my password?"

  # Keyword matching only, plain text reply
  supportbot ask --strategy keyword -f text "refund please"

  # Similarity retrieval with a stricter threshold
  supportbot ask --strategy similarity --threshold 0.7 "money back"

  # Include the reply's token count
  supportbot ask --count-tokens --verbose "billing hours"`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	addAskFlags(askCmd)
	askCmd.Flags().BoolVar(&askCountTokens, "count-tokens", false,
		"Report the reply's token count (cl100k_base)")
}

// addAskFlags registers the flags shared by ask and serve
func addAskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&askStrategy, "strategy", "s", "hybrid",
		"Answering strategy: keyword, similarity or hybrid")
	cmd.Flags().Float64VarP(&askThreshold, "threshold", "t", knowledge.DefaultSimilarityThreshold,
		"Minimum cosine similarity for an FAQ answer (-1 to 1)")
	cmd.Flags().StringVar(&askFallback, "fallback", "",
		"Reply when nothing matches (default: the knowledge base's default entry)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	opts, err := askOptions(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if askCountTokens {
		opts.TokenCounter = newTokenCounter()
	}

	requestID := uuid.NewString()
	result, err := knowledge.Ask(index, opts)
	if err != nil {
		log.Error("ask failed", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("failed to answer question: %w", err)
	}
	logAnswer(requestID, result)

	output, err := knowledge.FormatOutput(result, getFormat(), verbose)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// askOptions builds ask options for question from the resolved config
func askOptions(question string) (knowledge.AskOptions, error) {
	strategy, err := knowledge.ParseStrategy(cfg.Strategy)
	if err != nil {
		return knowledge.AskOptions{}, err
	}

	threshold := cfg.Threshold
	return knowledge.AskOptions{
		Question:      question,
		Strategy:      strategy,
		Threshold:     &threshold,
		Fallback:      cfg.Fallback,
		NewVectorizer: vectorizerFactory,
	}, nil
}

// newTokenCounter loads the default encoding, approximating when it is
// unavailable
func newTokenCounter() *knowledge.TokenCounter {
	counter, err := knowledge.NewTokenCounter(knowledge.DefaultEncoding)
	if err != nil {
		log.Warn("token encoding unavailable, approximating counts", zap.Error(err))
	}
	return counter
}

func logAnswer(requestID string, result knowledge.AskResult) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("strategy", string(result.Strategy)),
		zap.Bool("matched", result.Matched),
	}
	if result.Keyword != "" {
		fields = append(fields, zap.String("keyword", result.Keyword))
	}
	if result.Score != nil {
		fields = append(fields, zap.Float64("score", *result.Score))
	}
	log.Info("answered question", fields...)
}
