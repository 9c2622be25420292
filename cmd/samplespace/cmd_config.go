package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/samplespace/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage samplespace configuration",
		Long: `View and modify samplespace configuration settings.

Configuration is stored in ~/.samplespace/config.yaml. Environment variables
(SAMPLESPACE_ITERATIONS, SAMPLESPACE_SEED, SAMPLESPACE_WORKERS,
SAMPLESPACE_LOG_LEVEL, SAMPLESPACE_HISTORY) override the file.

Examples:
  samplespace config list                        # Show all settings
  samplespace config get sampling.iterations     # Get a specific setting
  samplespace config set sampling.seed 42        # Set a setting`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}

			historyPath, _ := cfg.HistoryPath()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration (~/.samplespace/config.yaml):")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Sampling Settings:")
			fmt.Fprintf(out, "  sampling.iterations:  %d\n", cfg.Sampling.Iterations)
			fmt.Fprintf(out, "  sampling.seed:        %s\n", seedOrDefault(cfg.Sampling.Seed))
			fmt.Fprintf(out, "  sampling.workers:     %d\n", cfg.Sampling.Workers)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Logging Settings:")
			fmt.Fprintf(out, "  logging.level:        %s\n", valueOrDefault(cfg.Logging.Level, "info"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "History Settings:")
			fmt.Fprintf(out, "  history.enabled:      %v\n", cfg.History.Enabled)
			fmt.Fprintf(out, "  history.path:         %s\n", valueOrDefault(cfg.History.Path, historyPath+" (default)"))
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := cfg.Get(key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s (known: %v)", key, config.Keys())
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				var err error
				path, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}

			// Start from the file alone so environment overrides are not
			// persisted.
			cfg := config.Default()
			if loaded, err := config.LoadFromFile(path); err == nil {
				cfg = loaded
			}

			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// valueOrDefault returns value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func seedOrDefault(seed uint64) string {
	if seed == 0 {
		return "0 (fresh seed per run)"
	}
	return fmt.Sprint(seed)
}
