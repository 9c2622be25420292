package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nvandessel/samplespace/internal/scenario"
	"github.com/spf13/cobra"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List built-in scenarios and their keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			entries := scenario.All()

			if jsonOut {
				items := make([]map[string]any, 0, len(entries))
				for _, e := range entries {
					items = append(items, map[string]any{
						"name":        e.Name,
						"description": e.Description,
						"keys":        e.Keys,
					})
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"scenarios": items,
					"count":     len(items),
				})
			}

			out := cmd.OutOrStdout()
			for i, e := range entries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s\n  %s\n  keys: %s\n", e.Name, e.Description, strings.Join(e.Keys, ", "))
			}
			return nil
		},
	}
}
