package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jsantoro/mealbank/internal/model"
)

// FeedbackKind tags the shape of a coaching response.
type FeedbackKind string

const (
	// Freeform is plain prose.
	Freeform FeedbackKind = "freeform"
	// Structured is a list of titled sections.
	Structured FeedbackKind = "structured"
)

// Feedback is a coaching response. Exactly one of Text or Sections is
// meaningful, selected by Kind.
type Feedback struct {
	Kind     FeedbackKind      `json:"kind"`
	Text     string            `json:"text,omitempty"`
	Sections []FeedbackSection `json:"sections,omitempty"`
}

// FeedbackSection is one titled block of structured feedback.
type FeedbackSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

const feedbackPrompt = `You are a supportive nutrition coach. Given the user's day, give brief,
actionable feedback. Either respond with plain text, or with a JSON object
{"sections": [{"title": string, "body": string}]} when you have distinct points.`

// CoachFeedback asks for feedback on a finalized day.
func (c *Client) CoachFeedback(ctx context.Context, sum model.DaySummary) (*Feedback, error) {
	day := fmt.Sprintf(
		"Date %s, goal type %s. Consumed %.0f kcal against a %.0f kcal goal. Protein %.0fg of %.0fg. Goal met: %v.",
		sum.DateKey, sum.GoalType, sum.ConsumedCalories, sum.GoalCalories,
		sum.ConsumedProteinG, sum.GoalProteinG, sum.GoalMet)

	text, err := c.generate(ctx, []geminiPart{{Text: feedbackPrompt + "\n\n" + day}})
	if err != nil {
		return nil, err
	}
	fb := ParseFeedback(text)
	return &fb, nil
}

// ParseFeedback classifies a raw model response as structured or freeform.
// The response shape is not reliable, so this probes for the structured form
// and falls back to prose.
func ParseFeedback(raw string) Feedback {
	cleaned := stripFences(raw)
	if strings.HasPrefix(cleaned, "{") {
		var structured struct {
			Sections []FeedbackSection `json:"sections"`
		}
		if err := json.Unmarshal([]byte(cleaned), &structured); err == nil && len(structured.Sections) > 0 {
			return Feedback{Kind: Structured, Sections: structured.Sections}
		}
	}
	return Feedback{Kind: Freeform, Text: strings.TrimSpace(raw)}
}
