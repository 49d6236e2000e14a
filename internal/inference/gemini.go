// Package inference calls the Gemini API to analyze food from text or
// images and to produce coaching feedback. The ledger core only consumes
// the structured results; nothing here feeds back into its invariants.
package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jsantoro/mealbank/internal/model"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewClient creates a Gemini client. The API key comes from configuration
// (GEMINI_API_KEY).
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Tests use this.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

const nutritionPrompt = `You are a nutrition analysis assistant. Estimate the nutritional
content of the described food. Respond with ONLY a JSON object, no prose:
{"name": string, "calories": number, "protein_g": number, "carbs_g": number, "fat_g": number}`

// ScoreFoodText estimates nutrition from a free-text description.
func (c *Client) ScoreFoodText(ctx context.Context, query string) (*model.NutritionalInfo, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty food description")
	}
	parts := []geminiPart{{Text: nutritionPrompt + "\n\nFood: " + query}}
	return c.scoreFood(ctx, parts)
}

// ScoreFoodImage estimates nutrition from a photo of a meal.
func (c *Client) ScoreFoodImage(ctx context.Context, image []byte, mimeType string) (*model.NutritionalInfo, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []geminiPart{
		{Text: nutritionPrompt + "\n\nAnalyze the food in this photo."},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}
	return c.scoreFood(ctx, parts)
}

func (c *Client) scoreFood(ctx context.Context, parts []geminiPart) (*model.NutritionalInfo, error) {
	text, err := c.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var info model.NutritionalInfo
	if err := json.Unmarshal([]byte(stripFences(text)), &info); err != nil {
		return nil, fmt.Errorf("parse nutrition response: %w", err)
	}
	info = info.Clamp()
	return &info, nil
}

func (c *Client) generate(ctx context.Context, parts []geminiPart) (string, error) {
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// stripFences removes a markdown code fence around a JSON payload. The model
// adds one despite instructions often enough to handle it.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
