package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/samplespace/internal/estimate"
	"github.com/nvandessel/samplespace/internal/experiment"
	"github.com/nvandessel/samplespace/internal/runner"
	"github.com/spf13/cobra"
)

// momentFunc computes one statistic of key within sess.
type momentFunc func(sess *runner.Session, key experiment.Key) (float64, error)

func newMomentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moment <scenario> <key>",
		Short: "Estimate the n-th moment of a key",
		Long: `Estimate the n-th raw moment of a numeric key. --central subtracts the mean
first; --normalized (with --central) also divides by the standard deviation.

The mean, variance, std, skewness and kurtosis subcommands fix the order and
shape for the common cases.

Examples:
  samplespace moment normal value --n 2
  samplespace moment normal value --n 4 --central --normalized
  samplespace moment variance dice total --given doubles`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("n")
			central, _ := cmd.Flags().GetBool("central")
			normalized, _ := cmd.Flags().GetBool("normalized")

			var shape []estimate.QueryOption
			if central {
				shape = append(shape, estimate.Central())
			}
			if normalized {
				shape = append(shape, estimate.Normalized())
			}

			return runMoment(cmd, args, "moment", func(sess *runner.Session, key experiment.Key) (float64, error) {
				return sess.Estimator.NthMomentOf(key, n, sess.Query(shape...)...)
			})
		},
	}

	addSamplingFlags(cmd.PersistentFlags())
	cmd.Flags().Int("n", 1, "Moment order (at least 1)")
	cmd.Flags().Bool("central", false, "Subtract the mean before raising to the n-th power")
	cmd.Flags().Bool("normalized", false, "Divide centered values by the standard deviation (requires --central)")

	cmd.AddCommand(
		newNamedMomentCmd("mean", "Estimate the expected value of a key",
			func(sess *runner.Session, key experiment.Key) (float64, error) {
				return sess.Estimator.ExpectedValueOf(key, sess.Query()...)
			}),
		newNamedMomentCmd("variance", "Estimate the variance of a key",
			func(sess *runner.Session, key experiment.Key) (float64, error) {
				return sess.Estimator.VarianceOf(key, sess.Query()...)
			}),
		newNamedMomentCmd("std", "Estimate the standard deviation of a key",
			func(sess *runner.Session, key experiment.Key) (float64, error) {
				return sess.Estimator.StandardDeviationOf(key, sess.Query()...)
			}),
		newNamedMomentCmd("skewness", "Estimate the skewness (third normalized moment) of a key",
			func(sess *runner.Session, key experiment.Key) (float64, error) {
				return sess.Estimator.SkewnessOf(key, sess.Query()...)
			}),
		newNamedMomentCmd("kurtosis", "Estimate the kurtosis (fourth normalized moment, 3 for a normal) of a key",
			func(sess *runner.Session, key experiment.Key) (float64, error) {
				return sess.Estimator.KurtosisOf(key, sess.Query()...)
			}),
	)

	return cmd
}

func newNamedMomentCmd(name, short string, fn momentFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <scenario> <key>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoment(cmd, args, name, fn)
		},
	}
}

func runMoment(cmd *cobra.Command, args []string, statistic string, fn momentFunc) error {
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
	value, err := fn(sess, key)
	if err != nil {
		return fmt.Errorf("failed to estimate %s: %w", statistic, err)
	}

	rep := sess.LastReport()
	if jsonOut {
		out := map[string]any{
			"scenario":  sess.Entry.Name,
			"key":       key.String(),
			"given":     rep.Given,
			"statistic": statistic,
			"value":     value,
			"run":       runFields(sess),
		}
		if statistic == "moment" {
			out["order"] = rep.Order
			out["central"] = rep.Central
			out["normalized"] = rep.Normalized
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	}

	label := statistic
	if statistic == "moment" {
		label = momentLabel(rep)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s of %s%s = %.6g  %s\n", label, key, conditionSuffix(rep.Given), value, runSuffix(sess))
	return nil
}

// momentLabel names a general moment, e.g. "central moment 3".
func momentLabel(rep estimate.Report) string {
	switch {
	case rep.Normalized:
		return fmt.Sprintf("normalized moment %d", rep.Order)
	case rep.Central:
		return fmt.Sprintf("central moment %d", rep.Order)
	default:
		return fmt.Sprintf("moment %d", rep.Order)
	}
}
