package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nvandessel/samplespace/internal/export"
	"github.com/nvandessel/samplespace/internal/runner"
	"github.com/spf13/cobra"
)

func newDistributionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution <scenario> <key>...",
		Short: "Sample the empirical distribution of one or more keys",
		Long: `Print the value of each key on every surviving realization, one row per
realization. Several keys give a joint distribution whose columns come from
the same realization.

With --export the rows are written to an Arrow IPC file instead, for
plotting or analysis in other tools.

Examples:
  samplespace distribution dice total
  samplespace distribution dice die_1 die_2 --given doubles
  samplespace distribution normal value --iterations 100000 --export normal.arrow`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			exportPath, _ := cmd.Flags().GetString("export")

			sess, cleanup, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			keys, err := sess.Keys(args[1:])
			if err != nil {
				return err
			}

			var rows [][]float64
			if len(keys) == 1 {
				xs, err := sess.Estimator.DistributionOf(keys[0], sess.Query()...)
				if err != nil {
					return fmt.Errorf("failed to sample distribution: %w", err)
				}
				rows = make([][]float64, len(xs))
				for i, x := range xs {
					rows[i] = []float64{x}
				}
			} else {
				rows, err = sess.Estimator.JointDistributionOf(keys, sess.Query()...)
				if err != nil {
					return fmt.Errorf("failed to sample joint distribution: %w", err)
				}
			}

			names := sess.LastReport().Keys
			if exportPath != "" {
				table := export.Table{
					Columns:  export.UniqueColumns(names),
					Rows:     rows,
					Metadata: exportMetadata(sess),
				}
				if err := export.NewWriter().WriteFile(exportPath, table); err != nil {
					return fmt.Errorf("failed to export distribution: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"scenario": sess.Entry.Name,
						"keys":     names,
						"rows":     len(rows),
						"path":     exportPath,
						"run":      runFields(sess),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s %s\n", len(rows), exportPath, runSuffix(sess))
				return nil
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"scenario": sess.Entry.Name,
					"keys":     names,
					"rows":     rows,
					"run":      runFields(sess),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(names, "\t"))
			cells := make([]string, len(names))
			for _, row := range rows {
				for i, v := range row {
					cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
				}
				fmt.Fprintln(out, strings.Join(cells, "\t"))
			}
			return nil
		},
	}

	addSamplingFlags(cmd.Flags())
	cmd.Flags().String("export", "", "Write the rows to this Arrow IPC file")
	return cmd
}

// exportMetadata records how an exported distribution was produced.
func exportMetadata(sess *runner.Session) map[string]string {
	rep := sess.LastReport()
	md := map[string]string{
		"scenario":   sess.Entry.Name,
		"iterations": strconv.Itoa(rep.Iterations),
		"survivors":  strconv.Itoa(rep.Survivors),
		"seed":       strconv.FormatUint(rep.Seed, 10),
	}
	if len(rep.Given) > 0 {
		md["given"] = strings.Join(rep.Given, "; ")
	}
	return md
}
