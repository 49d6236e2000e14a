package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/inference"
	"github.com/jsantoro/mealbank/internal/ledger"
	"github.com/jsantoro/mealbank/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a meal",
		Long: "Log a meal for today. Provide macros directly, or let Gemini estimate them " +
			"from a description (--describe) or a photo (--image). Bank coverage for the " +
			"whole day is recomputed after every log.",
		Run: runLog,
	}

	cmd.Flags().StringP("name", "n", "", "Meal name")
	cmd.Flags().Float64P("calories", "c", 0, "Calories")
	cmd.Flags().Float64P("protein", "p", 0, "Protein (g)")
	cmd.Flags().Float64("carbs", 0, "Carbs (g)")
	cmd.Flags().Float64("fat", 0, "Fat (g)")
	cmd.Flags().String("at", "", "Time eaten today, HH:MM (default: now)")
	cmd.Flags().String("describe", "", "Free-text description to analyze")
	cmd.Flags().String("image", "", "Path to a food photo to analyze")

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	describe, _ := cmd.Flags().GetString("describe")
	imagePath, _ := cmd.Flags().GetString("image")

	var info model.NutritionalInfo
	switch {
	case describe != "":
		scored, err := scoreFood(cmd, describe, imagePath)
		if err != nil {
			exitErr("analyze food", err)
		}
		info = *scored
	case imagePath != "":
		scored, err := scoreFood(cmd, "", imagePath)
		if err != nil {
			exitErr("analyze photo", err)
		}
		info = *scored
	default:
		info.Calories, _ = cmd.Flags().GetFloat64("calories")
		info.ProteinG, _ = cmd.Flags().GetFloat64("protein")
		info.CarbsG, _ = cmd.Flags().GetFloat64("carbs")
		info.FatG, _ = cmd.Flags().GetFloat64("fat")
	}
	if name == "" {
		name = info.Name
	}

	at, err := parseTodayTime(cmd)
	if err != nil {
		exitErr("log", err)
	}

	e, s := openEngine(cmd)
	defer s.Close()

	meal, err := e.LogMeal(cmd.Context(), ledger.MealInput{Name: name, Info: info, At: at})
	if err != nil {
		exitErr("log meal", err)
	}

	b, _ := json.MarshalIndent(meal, "", "  ")
	fmt.Println(string(b))
}

// parseTodayTime resolves --at as a clock time on the current day.
func parseTodayTime(cmd *cobra.Command) (time.Time, error) {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return time.Time{}, nil
	}
	clock, err := time.Parse("15:04", at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected HH:MM)", at)
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

func scoreFood(cmd *cobra.Command, describe, imagePath string) (*model.NutritionalInfo, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client := inference.NewClient(apiKey)

	if describe != "" {
		return client.ScoreFoodText(cmd.Context(), describe)
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return client.ScoreFoodImage(cmd.Context(), img, http.DetectContentType(img))
}
