package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat specifies the output format
type OutputFormat string

// Output format constants.
const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// FormatOutput formats an ask result for display. Text output is the bare
// reply unless verbose is set.
func FormatOutput(result AskResult, format OutputFormat, verbose bool) (string, error) {
	switch format {
	case FormatText:
		return formatText(result, verbose), nil
	default:
		return formatJSON(result)
	}
}

func formatJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func formatText(result AskResult, verbose bool) string {
	if !verbose {
		return result.Reply
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question: %s\n", result.Question))
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString(fmt.Sprintf("Strategy: %s | Matched: %t\n", result.Strategy, result.Matched))
	if result.Keyword != "" {
		sb.WriteString(fmt.Sprintf("Keyword:  %s\n", result.Keyword))
	}
	if result.Score != nil {
		sb.WriteString(fmt.Sprintf("Score:    %.4f\n", *result.Score))
	}
	if result.TokenCount > 0 {
		sb.WriteString(fmt.Sprintf("Tokens:   %d\n", result.TokenCount))
	}
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(result.Reply)
	return sb.String()
}

// FormatEntry formats a single knowledge entry for display
func FormatEntry(e Entry, format OutputFormat) (string, error) {
	if format == FormatText {
		return fmt.Sprintf("%s\n%s\n%s", e.Keyword, strings.Repeat("-", 40), e.Reply), nil
	}
	return formatJSON(e)
}

// FormatEntries formats knowledge entries in iteration order
func FormatEntries(entries []Entry, format OutputFormat, verbose bool) (string, error) {
	if format != FormatText {
		return formatJSON(entries)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d entr%s:\n\n", len(entries), plural(len(entries), "y", "ies")))
	for i, e := range entries {
		marker := ""
		if e.IsDefault() {
			marker = " (fallback)"
		}
		if verbose {
			sb.WriteString(fmt.Sprintf("[%d] %s%s\n", i+1, e.Keyword, marker))
			sb.WriteString(fmt.Sprintf("  Terms: %s\n", strings.Join(e.Terms(), ", ")))
			sb.WriteString(fmt.Sprintf("  Reply: %s\n\n", e.Reply))
		} else {
			sb.WriteString(fmt.Sprintf("%3d  %-30s  %s\n", i+1, e.Keyword+marker, truncate(e.Reply, 60)))
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// FormatValidation renders validation results with a summary line. Sources
// without issues are listed only when verbose is set.
func FormatValidation(results []ValidationResult, verbose bool) string {
	var sb strings.Builder
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		totalErrors += len(result.Errors)
		totalWarnings += len(result.Warnings)

		hasIssues := len(result.Errors) > 0 || len(result.Warnings) > 0
		if !hasIssues && !verbose {
			continue
		}

		status := "✓"
		if !result.IsValid {
			status = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", status, result.Source))

		for _, e := range result.Errors {
			sb.WriteString(fmt.Sprintf("  ERROR: %q %s - %s\n", e.Keyword, e.Field, e.Message))
		}
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("  WARN:  %q %s - %s\n", w.Keyword, w.Field, w.Message))
		}
		if hasIssues {
			sb.WriteString("\n")
		}
	}

	sb.WriteString(fmt.Sprintf("Validated %d source%s: %d error(s), %d warning(s)",
		len(results), plural(len(results), "", "s"), totalErrors, totalWarnings))
	return sb.String()
}
