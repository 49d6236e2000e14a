package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/ledger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile missed days, streak and bank",
		Long: "Evaluate every day since the last check, updating the streak, the weekly " +
			"bank and day summaries. Safe to run repeatedly; a partially applied run " +
			"resumes where it stopped.",
		Run: runSync,
	}
	RootCmd.AddCommand(cmd)
}

func runSync(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd)
	defer s.Close()

	rep, err := ledger.NewReconciler(e).Run(cmd.Context())
	if err != nil {
		if ledger.IsPartial(err) && rep != nil {
			b, _ := json.MarshalIndent(rep, "", "  ")
			fmt.Println(string(b))
			fmt.Fprintf(os.Stderr, "warning: %v (rerun sync to finish)\n", err)
			os.Exit(1)
		}
		exitErr("sync", err)
	}

	b, _ := json.MarshalIndent(rep, "", "  ")
	fmt.Println(string(b))
}
