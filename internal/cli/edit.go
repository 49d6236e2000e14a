package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/ledger"
	"github.com/jsantoro/mealbank/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit <meal-id>",
		Short: "Edit one of today's meals",
		Long: "Replace the macros (and optionally the name or time) of a meal logged " +
			"today. Bank coverage for the whole day is recomputed afterwards.",
		Args: cobra.ExactArgs(1),
		Run:  runEdit,
	}

	cmd.Flags().StringP("name", "n", "", "New meal name")
	cmd.Flags().Float64P("calories", "c", 0, "Calories")
	cmd.Flags().Float64P("protein", "p", 0, "Protein (g)")
	cmd.Flags().Float64("carbs", 0, "Carbs (g)")
	cmd.Flags().Float64("fat", 0, "Fat (g)")
	cmd.Flags().String("at", "", "New time eaten, HH:MM")

	RootCmd.AddCommand(cmd)
}

func runEdit(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd)
	defer s.Close()

	var current *model.Meal
	for _, m := range e.Meals() {
		if m.ID == args[0] {
			mm := m
			current = &mm
			break
		}
	}
	if current == nil {
		exitErr("edit", fmt.Errorf("no meal %s logged today", args[0]))
	}

	// Unset flags keep the meal's existing values.
	info := model.NutritionalInfo{
		Calories: current.Calories,
		ProteinG: current.ProteinG,
		CarbsG:   current.CarbsG,
		FatG:     current.FatG,
	}
	if cmd.Flags().Changed("calories") {
		info.Calories, _ = cmd.Flags().GetFloat64("calories")
	}
	if cmd.Flags().Changed("protein") {
		info.ProteinG, _ = cmd.Flags().GetFloat64("protein")
	}
	if cmd.Flags().Changed("carbs") {
		info.CarbsG, _ = cmd.Flags().GetFloat64("carbs")
	}
	if cmd.Flags().Changed("fat") {
		info.FatG, _ = cmd.Flags().GetFloat64("fat")
	}

	in := ledger.MealInput{Info: info}
	if cmd.Flags().Changed("name") {
		in.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("at") {
		at, err := parseTodayTime(cmd)
		if err != nil {
			exitErr("edit", err)
		}
		in.At = at
	}

	meal, err := e.EditMeal(cmd.Context(), args[0], in)
	if err != nil {
		exitErr("edit meal", err)
	}

	b, _ := json.MarshalIndent(meal, "", "  ")
	fmt.Println(string(b))
}
