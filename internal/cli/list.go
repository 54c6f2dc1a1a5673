package cli

import (
	"fmt"

	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all knowledge entries",
	Long: `List every keyword entry in matching order.

Examples:
  # List all entries
  supportbot list

  # List with terms and full replies
  supportbot list --verbose`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	entries := index.Knowledge().Entries()

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries found")
		return nil
	}

	output, err := knowledge.FormatEntries(entries, getFormat(), verbose)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
