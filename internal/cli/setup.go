package cli

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/model"
	"github.com/jsantoro/mealbank/internal/profile"
	"github.com/jsantoro/mealbank/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create or update your profile and daily goals",
		Long: "Create or update the user profile. Daily calorie/macro/water goals are " +
			"derived from it and stored; rerun after weight or goal changes.",
		Run: runSetup,
	}

	cmd.Flags().String("sex", "", "male or female (required)")
	cmd.Flags().Int("age", 0, "Age in years (required)")
	cmd.Flags().Float64("height", 0, "Height in cm (required)")
	cmd.Flags().Float64("weight", 0, "Weight in kg (required)")
	cmd.Flags().String("activity", "moderate", "Activity: sedentary, light, moderate, active, very_active")
	cmd.Flags().String("goal", "maintain", "Goal type: lose_fat, maintain, gain_muscle")

	cmd.MarkFlagRequired("sex")
	cmd.MarkFlagRequired("age")
	cmd.MarkFlagRequired("height")
	cmd.MarkFlagRequired("weight")

	RootCmd.AddCommand(cmd)
}

func runSetup(cmd *cobra.Command, args []string) {
	sex, _ := cmd.Flags().GetString("sex")
	age, _ := cmd.Flags().GetInt("age")
	height, _ := cmd.Flags().GetFloat64("height")
	weight, _ := cmd.Flags().GetFloat64("weight")
	activity, _ := cmd.Flags().GetString("activity")
	goal, _ := cmd.Flags().GetString("goal")

	path := profile.DefaultPath(getDBPath())
	p, err := profile.Load(path)
	if err != nil {
		// First-time setup: mint a user id.
		p = &profile.Profile{UserID: uuid.NewString()}
	}

	p.Sex = sex
	p.Age = age
	p.HeightCM = height
	p.WeightKG = weight
	p.Activity = activity
	p.GoalType = model.GoalType(goal)

	goals, err := profile.Recommend(*p)
	if err != nil {
		exitErr("setup", err)
	}
	if err := profile.Save(path, p); err != nil {
		exitErr("save profile", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	gt := p.GoalType
	err = s.UpdateUserAggregate(cmd.Context(), p.UserID, store.AggregatePatch{
		Goals:    &goals,
		GoalType: &gt,
	})
	if err != nil {
		exitErr("store goals", err)
	}

	out := struct {
		UserID string         `json:"user_id"`
		Goals  model.Goals    `json:"goals"`
		Goal   model.GoalType `json:"goal_type"`
		Path   string         `json:"profile_path"`
	}{p.UserID, goals, p.GoalType, path}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
