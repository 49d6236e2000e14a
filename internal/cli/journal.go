package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List finalized day summaries, newest first",
		Run:   runJournal,
	}
	cmd.Flags().IntP("limit", "l", 14, "Maximum days to list")
	RootCmd.AddCommand(cmd)
}

func runJournal(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	p, err := loadProfile()
	if err != nil {
		exitErr("load profile (run `mealbank setup` first)", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sums, err := s.Summaries(cmd.Context(), p.UserID, limit)
	if err != nil {
		exitErr("list summaries", err)
	}

	if formatFlag == "text" {
		for _, d := range sums {
			mark := "miss"
			if d.GoalMet {
				mark = "met "
			}
			fmt.Printf("%s  %s  %6.0f / %-6.0f kcal  streak %d\n",
				d.DateKey, mark, d.ConsumedCalories, d.GoalCalories, d.StreakForDay)
		}
		return
	}
	b, _ := json.MarshalIndent(sums, "", "  ")
	fmt.Println(string(b))
}
