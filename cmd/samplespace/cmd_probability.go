package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newProbabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probability <scenario> <event>",
		Short: "Estimate P(event | given)",
		Long: `Estimate the probability of an event by rerunning a scenario.

Examples:
  samplespace probability monty-hall you_win_if_you_switch
  samplespace probability monty-hall car_behind_door_1 --given you_win_if_you_switch
  samplespace probability dice "total >= 10" --given doubles --iterations 50000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			sess, cleanup, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			event, err := sess.Key(args[1])
			if err != nil {
				return err
			}
			p, err := sess.Estimator.ProbabilityOf(event, sess.Query()...)
			if err != nil {
				return fmt.Errorf("failed to estimate probability: %w", err)
			}

			given := sess.LastReport().Given
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"scenario":    sess.Entry.Name,
					"event":       event.String(),
					"given":       given,
					"probability": p,
					"run":         runFields(sess),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "P(%s%s) = %.4f  %s\n", event, conditionSuffix(given), p, runSuffix(sess))
			return nil
		},
	}

	addSamplingFlags(cmd.Flags())
	return cmd
}
