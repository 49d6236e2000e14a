// Package profile holds the user profile file and derives recommended daily
// goals from it. The profile lives next to the database as YAML; goals
// derived here are written into the user aggregate at setup and whenever the
// profile changes.
package profile

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jsantoro/mealbank/internal/model"
)

// activityMultipliers maps activity levels to their TDEE multiplier. Also
// the source of truth for valid activity values.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Profile is the stored user profile.
type Profile struct {
	UserID   string         `yaml:"user_id"`
	Sex      string         `yaml:"sex"` // male or female, drives the BMR constant
	Age      int            `yaml:"age"`
	HeightCM float64        `yaml:"height_cm"`
	WeightKG float64        `yaml:"weight_kg"`
	Activity string         `yaml:"activity"`
	GoalType model.GoalType `yaml:"goal_type"`
}

// Validate checks the profile fields needed by Recommend.
func (p *Profile) Validate() error {
	if p.Age <= 0 || p.Age > 130 {
		return fmt.Errorf("implausible age %d", p.Age)
	}
	if p.HeightCM <= 0 {
		return fmt.Errorf("height is required")
	}
	if p.WeightKG <= 0 {
		return fmt.Errorf("weight is required")
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return fmt.Errorf("unknown activity %q (use sedentary, light, moderate, active or very_active)", p.Activity)
	}
	if !model.ValidGoalTypes[p.GoalType] {
		return fmt.Errorf("unknown goal type %q (use lose_fat, maintain or gain_muscle)", p.GoalType)
	}
	return nil
}

// Recommend derives daily goals: BMR via Mifflin-St Jeor, scaled by the
// activity multiplier, shifted for the goal type, then split into macros
// (protein by body weight, fat at 25% of calories, carbs the remainder).
func Recommend(p Profile) (model.Goals, error) {
	if err := p.Validate(); err != nil {
		return model.Goals{}, err
	}

	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	tdee := bmr * activityMultipliers[p.Activity]

	calories := tdee
	proteinPerKG := 1.6
	switch p.GoalType {
	case model.GoalLoseFat:
		calories = tdee - 500
		proteinPerKG = 2.0
	case model.GoalGainMuscle:
		calories = tdee + 300
		proteinPerKG = 2.0
	}
	// Never recommend below the floor a successful day requires.
	calories = math.Max(calories, 1200)

	protein := proteinPerKG * p.WeightKG
	fat := calories * 0.25 / 9
	carbs := (calories - protein*4 - fat*9) / 4

	return model.Goals{
		Calories: math.Round(calories),
		ProteinG: math.Round(protein),
		CarbsG:   math.Round(math.Max(carbs, 0)),
		FatG:     math.Round(fat),
		WaterML:  math.Round(35 * p.WeightKG),
	}, nil
}

// DefaultPath returns the profile path next to the given database path.
func DefaultPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "profile.yaml")
}

// Load reads a profile file.
func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// Save writes the profile file, creating its directory when needed.
func Save(path string, p *Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
