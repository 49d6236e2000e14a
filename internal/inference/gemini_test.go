package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeGemini(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
			t.Error("expected at least one content part")
		}
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": replyText}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestScoreFoodText(t *testing.T) {
	srv := fakeGemini(t, `{"name":"oatmeal with banana","calories":320,"protein_g":9,"carbs_g":58,"fat_g":6}`)
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	info, err := c.ScoreFoodText(context.Background(), "bowl of oatmeal with a banana")
	if err != nil {
		t.Fatalf("score text: %v", err)
	}
	if info.Name != "oatmeal with banana" || info.Calories != 320 || info.ProteinG != 9 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestScoreFoodTextFencedResponse(t *testing.T) {
	srv := fakeGemini(t, "```json\n{\"name\":\"apple\",\"calories\":95,\"protein_g\":0.5,\"carbs_g\":25,\"fat_g\":0.3}\n```")
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	info, err := c.ScoreFoodText(context.Background(), "an apple")
	if err != nil {
		t.Fatalf("score text: %v", err)
	}
	if info.Calories != 95 {
		t.Errorf("expected 95 kcal, got %v", info.Calories)
	}
}

func TestScoreFoodTextClampsNegatives(t *testing.T) {
	srv := fakeGemini(t, `{"name":"diet soda","calories":-5,"protein_g":0,"carbs_g":0,"fat_g":0}`)
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	info, err := c.ScoreFoodText(context.Background(), "diet soda")
	if err != nil {
		t.Fatalf("score text: %v", err)
	}
	if info.Calories != 0 {
		t.Errorf("expected clamped 0 kcal, got %v", info.Calories)
	}
}

func TestScoreFoodImage(t *testing.T) {
	srv := fakeGemini(t, `{"name":"cheeseburger","calories":550,"protein_g":28,"carbs_g":40,"fat_g":30}`)
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	info, err := c.ScoreFoodImage(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("score image: %v", err)
	}
	if info.Name != "cheeseburger" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestScoreFoodErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key").WithBaseURL(srv.URL)
	if _, err := c.ScoreFoodText(context.Background(), "toast"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestParseFeedbackVariants(t *testing.T) {
	fb := ParseFeedback("Great job staying under your goal today. Keep the protein up tomorrow.")
	if fb.Kind != Freeform || fb.Text == "" {
		t.Errorf("expected freeform, got %+v", fb)
	}

	fb = ParseFeedback(`{"sections":[{"title":"Calories","body":"On target."},{"title":"Protein","body":"A bit low."}]}`)
	if fb.Kind != Structured || len(fb.Sections) != 2 {
		t.Errorf("expected structured with 2 sections, got %+v", fb)
	}
	if fb.Sections[0].Title != "Calories" {
		t.Errorf("unexpected section %+v", fb.Sections[0])
	}

	// Malformed JSON degrades to freeform rather than failing.
	fb = ParseFeedback(`{"sections": broken`)
	if fb.Kind != Freeform {
		t.Errorf("expected freeform fallback, got %+v", fb)
	}
}
