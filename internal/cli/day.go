package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/ledger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show today's running status",
		Long: "Show today's meals, totals, remaining allowance and bank balance. " +
			"Today is provisional until the nightly reconciliation finalizes it.",
		Run: runDay,
	}
	RootCmd.AddCommand(cmd)
}

func runDay(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd)
	defer s.Close()

	status, err := e.Status(cmd.Context())
	if err != nil {
		exitErr("day status", err)
	}

	if formatFlag == "text" {
		renderDay(cmd.OutOrStdout(), status)
		return
	}
	b, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(b))
}

// renderDay writes the human-readable day view.
func renderDay(w io.Writer, st *ledger.DayStatus) {
	fmt.Fprintf(w, "%s (%s)\n", st.DateKey, st.GoalType)
	if len(st.Meals) == 0 {
		fmt.Fprintln(w, "  no meals logged yet")
	}
	for _, m := range st.Meals {
		fmt.Fprintf(w, "  %s  %-20s %6.0f kcal", m.EatenAt.Format("15:04"), m.Name, m.Calories)
		if m.CoveredByBank > 0 {
			fmt.Fprintf(w, "  (%.0f from bank)", m.CoveredByBank)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  calories  %6.0f / %-6.0f remaining %.0f\n", st.Consumed.Calories, st.Goals.Calories, st.Remaining.Calories)
	fmt.Fprintf(w, "  protein   %6.0f / %-6.0f remaining %.0f\n", st.Consumed.ProteinG, st.Goals.ProteinG, st.Remaining.ProteinG)
	fmt.Fprintf(w, "  water     %6.0f / %-6.0f ml\n", st.WaterML, st.Goals.WaterML)
	fmt.Fprintf(w, "  bank      %6.0f kcal (%s)\n", st.Bank.Calories, st.Bank.WeekID)
	fmt.Fprintf(w, "  streak    %d\n", st.Streak)
	if st.OnTrack {
		fmt.Fprintln(w, "  on track")
	} else {
		fmt.Fprintln(w, "  over budget")
	}
}
