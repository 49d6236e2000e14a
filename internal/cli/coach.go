package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsantoro/mealbank/internal/dateutil"
	"github.com/jsantoro/mealbank/internal/inference"
)

func init() {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Get coaching feedback on yesterday",
		Long:  "Ask Gemini for feedback on yesterday's finalized summary. Run `mealbank sync` first so the day has been evaluated.",
		Run:   runCoach,
	}
	RootCmd.AddCommand(cmd)
}

func runCoach(cmd *cobra.Command, args []string) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		exitErr("coach", fmt.Errorf("GEMINI_API_KEY is not set"))
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

	yesterday, err := dateutil.PrevDay(dateutil.DayKey(time.Now()))
	if err != nil {
		exitErr("coach", err)
	}
	sum, err := s.DaySummary(cmd.Context(), p.UserID, yesterday)
	if err != nil {
		exitErr("load summary", err)
	}
	if sum == nil {
		exitErr("coach", fmt.Errorf("no summary for %s yet, run `mealbank sync`", yesterday))
	}

	fb, err := inference.NewClient(apiKey).CoachFeedback(cmd.Context(), *sum)
	if err != nil {
		exitErr("coach", err)
	}

	if formatFlag == "text" {
		switch fb.Kind {
		case inference.Structured:
			for _, sec := range fb.Sections {
				fmt.Printf("## %s\n%s\n\n", sec.Title, sec.Body)
			}
		default:
			fmt.Println(fb.Text)
		}
		return
	}
	b, _ := json.MarshalIndent(fb, "", "  ")
	fmt.Println(string(b))
}
