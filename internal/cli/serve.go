package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark-chris/supportbot/internal/knowledge"
	"github.com/mark-chris/supportbot/internal/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCountTokens bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server on stdin/stdout.

The server exposes the supportbot_ask tool to MCP clients such as desktop
assistants and agent frameworks. Messages are newline-delimited JSON-RPC 2.0;
logs go to stderr.

Examples:
  # Start the server
  supportbot serve

  # Keyword matching only, with token counts in replies
  supportbot serve --strategy keyword --count-tokens`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addAskFlags(serveCmd)
	serveCmd.Flags().BoolVar(&serveCountTokens, "count-tokens", false,
		"Report each reply's token count (cl100k_base)")
}

func runServe(cmd *cobra.Command, args []string) error {
	strategy, err := knowledge.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	threshold := cfg.Threshold

	opts := []mcp.Option{
		mcp.WithLogger(log),
		mcp.WithVectorizerFactory(vectorizerFactory),
		mcp.WithAskDefaults(mcp.AskDefaults{
			Strategy:  strategy,
			Threshold: &threshold,
			Fallback:  cfg.Fallback,
		}),
	}
	if serveCountTokens {
		opts = append(opts, mcp.WithTokenCounter(newTokenCounter()))
	}

	mcp.ServerVersion = Version
	server := mcp.NewServer(index, opts...)

	log.Info("starting MCP server",
		zap.Int("entries", index.Count()),
		zap.String("strategy", string(strategy)),
	)

	err = server.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server stopped: %w", err)
	}
	log.Info("MCP server stopped")
	return nil
}
