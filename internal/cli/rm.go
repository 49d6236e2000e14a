package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <meal-id>",
		Short: "Delete one of today's meals",
		Long: "Delete a meal logged today. Any bank calories it consumed are refunded " +
			"and coverage for the rest of the day is recomputed.",
		Args: cobra.ExactArgs(1),
		Run:  runRm,
	}
	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd)
	defer s.Close()

	if err := e.DeleteMeal(cmd.Context(), args[0]); err != nil {
		exitErr("delete meal", err)
	}
	fmt.Printf("{\"ok\": true, \"deleted\": %q}\n", args[0])
}
