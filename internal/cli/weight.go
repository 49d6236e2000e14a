package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "weight [kg]",
		Short: "Log a weigh-in, or list recent ones with --list",
		Args:  cobra.MaximumNArgs(1),
		Run:   runWeight,
	}
	cmd.Flags().Bool("list", false, "List recent weigh-ins instead of logging")
	cmd.Flags().IntP("limit", "l", 10, "Maximum entries to list")
	cmd.Flags().String("notes", "", "Optional note for the weigh-in")
	RootCmd.AddCommand(cmd)
}

func runWeight(cmd *cobra.Command, args []string) {
	list, _ := cmd.Flags().GetBool("list")

	p, err := loadProfile()
	if err != nil {
		exitErr("load profile (run `mealbank setup` first)", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if list {
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := s.Weights(cmd.Context(), p.UserID, limit)
		if err != nil {
			exitErr("list weights", err)
		}
		b, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(b))
		return
	}

	if len(args) != 1 {
		exitErr("weight", fmt.Errorf("provide a weight in kg, or --list"))
	}
	kg, err := strconv.ParseFloat(args[0], 64)
	if err != nil || kg <= 0 {
		exitErr("weight", fmt.Errorf("invalid weight %q", args[0]))
	}
	notes, _ := cmd.Flags().GetString("notes")

	entry, err := s.LogWeight(cmd.Context(), p.UserID, kg, notes)
	if err != nil {
		exitErr("log weight", err)
	}
	b, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Println(string(b))
}
