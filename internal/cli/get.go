package cli

import (
	"fmt"

	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <keyword>",
	Short: "Get the reply stored for a keyword",
	Long: `Retrieve the reply stored under a keyword phrase.

The keyword is normalized the same way the knowledge base is loaded, so
"Reset Password" finds "reset password".

Examples:
  # Get an entry (JSON)
  supportbot get "reset password"

  # Get an entry (human-readable)
  supportbot get "reset password" --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	keyword := knowledge.NormalizeQuestion(args[0])

	reply, ok := index.Lookup(keyword)
	if !ok {
		return fmt.Errorf("keyword not found: %s", args[0])
	}

	output, err := knowledge.FormatEntry(knowledge.Entry{Keyword: keyword, Reply: reply}, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
