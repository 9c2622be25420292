package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nvandessel/samplespace/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded estimation runs",
		Long: `List estimation runs recorded in the history database, newest first.

Examples:
  samplespace history
  samplespace history --scenario monty-hall --limit 5
  samplespace history --statistic probability --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			scenarioName, _ := cmd.Flags().GetString("scenario")
			statistic, _ := cmd.Flags().GetString("statistic")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			history, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if history == nil {
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"enabled": false,
						"runs":    []store.Run{},
						"count":   0,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (history.enabled = false).")
				return nil
			}
			defer history.Close()

			runs, err := history.List(cmd.Context(), store.Filter{
				Scenario:  scenarioName,
				Statistic: statistic,
				Limit:     limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				if runs == nil {
					runs = []store.Run{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"enabled": true,
					"runs":    runs,
					"count":   len(runs),
				})
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  %-12s %-20s %s%s = %s  (%d/%d, seed %d)\n",
					shortID(r.ID),
					r.CreatedAt.Local().Format(time.DateTime),
					r.Scenario,
					r.Statistic,
					strings.Join(r.Keys, ", "),
					conditionSuffix(r.Given),
					formatValue(r.Value),
					r.Survivors, r.Iterations, r.Seed,
				)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")
	cmd.Flags().String("scenario", "", "Only runs of this scenario")
	cmd.Flags().String("statistic", "", "Only runs of this statistic (e.g. probability, variance)")
	return cmd
}

// formatValue renders a recorded statistic compactly.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.6g", x)
	case map[string]any:
		if mean, ok := x["mean"].(float64); ok {
			return fmt.Sprintf("{mean %.6g}", mean)
		}
		return "{...}"
	default:
		return fmt.Sprint(x)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
