package cli

import (
	"errors"
	"fmt"

	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/spf13/cobra"
)

var validateStrict bool

// errValidationFailed is returned when validation finds problems
var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the knowledge base",
	Long: `Validate the knowledge base and FAQ file.

Reports keyword phrases that can never match, phrases shadowed by earlier
entries, a missing default reply, and incomplete FAQ pairs.

Examples:
  # Validate the configured knowledge base
  supportbot validate

  # Treat warnings as failures
  supportbot validate --strict

  # Validate a knowledge base and FAQ file
  supportbot validate -k data/knowledge_base.json --faq data/faq.json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"Fail on warnings as well as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	kbResult := knowledge.ValidateKnowledge(index.Knowledge())
	kbResult.Source = cfg.Knowledge
	results := []knowledge.ValidationResult{kbResult}

	if index.HasFAQ() {
		faqResult := knowledge.ValidateFAQPairs(index.Pairs())
		faqResult.Source = cfg.FAQ
		results = append(results, faqResult)
	}

	fmt.Fprintln(cmd.OutOrStdout(), knowledge.FormatValidation(results, verbose))

	for _, r := range results {
		if !r.IsValid || (validateStrict && len(r.Warnings) > 0) {
			return errValidationFailed
		}
	}
	return nil
}
