package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/dateutil"
)

func init() {
	cmd := &cobra.Command{
		Use:   "water <ml>",
		Short: "Log water for today",
		Args:  cobra.ExactArgs(1),
		Run:   runWater,
	}
	RootCmd.AddCommand(cmd)
}

func runWater(cmd *cobra.Command, args []string) {
	ml, err := strconv.ParseFloat(args[0], 64)
	if err != nil || ml <= 0 {
		exitErr("water", fmt.Errorf("invalid amount %q (expected positive millilitres)", args[0]))
	}

	p, err := loadProfile()
	if err != nil {
		exitErr("load profile (run `mealbank setup` first)", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	total, err := s.AddWater(cmd.Context(), p.UserID, dateutil.DayKey(time.Now()), ml)
	if err != nil {
		exitErr("log water", err)
	}
	fmt.Printf("{\"ok\": true, \"total_ml\": %.0f}\n", total)
}
