package cli

import (
	"errors"
	"fmt"

	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ingestInput         string
	ingestOutput        string
	ingestQuestionField string
	ingestAnswerField   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Convert an FAQ file into a knowledge base",
	Long: `Read question and answer records from a JSON or YAML list and write them
as a knowledge base keyed by the normalized question.

Records missing either field are skipped. A repeated question keeps its
first position and its last answer.

Examples:
  # Convert an FAQ export
  supportbot ingest --input faq.json --output data/knowledge_base.json

  # Use custom field names
  supportbot ingest --input export.yaml --question-field prompt --answer-field response`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestInput, "input", "i", "",
		"FAQ file to read (JSON or YAML list of records)")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "knowledge_base.json",
		"Knowledge base file to write")
	ingestCmd.Flags().StringVar(&ingestQuestionField, "question-field", knowledge.DefaultFAQFields.QuestionField,
		"Record field holding the question")
	ingestCmd.Flags().StringVar(&ingestAnswerField, "answer-field", knowledge.DefaultFAQFields.AnswerField,
		"Record field holding the answer")
	_ = ingestCmd.MarkFlagRequired("input")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestInput == "" {
		return errors.New("--input must be provided")
	}

	pairs, err := knowledge.LoadFAQPairs(ingestInput, knowledge.FAQFieldOptions{
		QuestionField: ingestQuestionField,
		AnswerField:   ingestAnswerField,
	})
	if err != nil {
		return fmt.Errorf("failed to read FAQ: %w", err)
	}

	if err := knowledge.PersistFAQPairs(pairs, ingestOutput); err != nil {
		return err
	}

	log.Info("ingested FAQ",
		zap.String("input", ingestInput),
		zap.String("output", ingestOutput),
		zap.Int("pairs", len(pairs)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d FAQ pairs into %s\n", len(pairs), ingestOutput)
	return nil
}
