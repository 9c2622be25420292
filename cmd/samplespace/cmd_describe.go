package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <scenario> <key>",
		Short: "Summarize a key from one conditioned sample",
		Long: `Compute mean, variance, standard deviation, min, max, skewness and kurtosis
of a numeric key, all from the same sample.

Example:
  samplespace describe binomial fraction --iterations 200`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			sess, cleanup, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			key, err := sess.Key(args[1])
			if err != nil {
				return err
			}
			summary, err := sess.Estimator.Describe(key, sess.Query()...)
			if err != nil {
				return fmt.Errorf("failed to describe %s: %w", key, err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"scenario": sess.Entry.Name,
					"key":      key.String(),
					"given":    sess.LastReport().Given,
					"summary":  summary,
					"run":      runFields(sess),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s%s  %s\n", key, conditionSuffix(sess.LastReport().Given), runSuffix(sess))
			fmt.Fprintf(out, "  mean:      %.6g\n", summary.Mean)
			fmt.Fprintf(out, "  variance:  %.6g\n", summary.Variance)
			fmt.Fprintf(out, "  std:       %.6g\n", summary.StdDev)
			fmt.Fprintf(out, "  min:       %.6g\n", summary.Min)
			fmt.Fprintf(out, "  max:       %.6g\n", summary.Max)
			fmt.Fprintf(out, "  skewness:  %s\n", optionalFloat(summary.Skewness))
			fmt.Fprintf(out, "  kurtosis:  %s\n", optionalFloat(summary.Kurtosis))
			return nil
		},
	}

	addSamplingFlags(cmd.Flags())
	return cmd
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "(undefined: zero variance)"
	}
	return fmt.Sprintf("%.6g", *v)
}
