package main

import (
	"github.com/nvandessel/samplespace/internal/logging"
	"github.com/nvandessel/samplespace/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Serve the estimation engine to MCP clients over stdin/stdout.

Tools: samplespace_scenarios, samplespace_probability,
samplespace_distribution, samplespace_moment, samplespace_describe and
samplespace_history. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "samplespace",
				Version:  version,
				Root:     root,
				Settings: cfg,
				Logger:   logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}
