// Package gemini implements the meal model contracts on top of the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/calcam/internal/core/meal"
	"github.com/hay-kot/calcam/internal/core/validate"
	"github.com/hay-kot/calcam/pkg/tmpl"
)

// ErrNoAPIKey is returned when a request is attempted without an API key.
var ErrNoAPIKey = errors.New("no Gemini API key configured (set ai.api_key or CALCAM_API_KEY)")

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: http %d", e.StatusCode)
	}
	if e.Status == "" {
		return fmt.Sprintf("gemini: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: http %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Client calls the Gemini API. It satisfies meal.Model.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

var _ meal.Model = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client for model at baseURL, e.g.
// https://generativelanguage.googleapis.com/v1beta.
func New(baseURL, model, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "gemini").Str("model", model).Logger()
	return c
}

// EstimateCalories identifies food items in a meal photo given as an image
// data URI.
func (c *Client) EstimateCalories(ctx context.Context, photoDataURI string) (meal.Estimate, error) {
	img, err := meal.DecodeImage(photoDataURI)
	if err != nil {
		return meal.Estimate{}, err
	}

	text, err := c.generate(ctx, estimatePrompt, &img)
	if err != nil {
		return meal.Estimate{}, fmt.Errorf("estimate calories: %w", err)
	}

	return meal.ParseEstimate([]byte(cleanResponse(text)))
}

// SuggestAccompaniments lists typical accompaniments for food.
func (c *Client) SuggestAccompaniments(ctx context.Context, food string) ([]string, error) {
	if err := validate.FoodName(food); err != nil {
		return nil, err
	}

	prompt, err := tmpl.Render(accompanimentsPrompt, map[string]string{"Food": food})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("suggest accompaniments for %q: %w", food, err)
	}

	return meal.ParseAccompaniments([]byte(cleanResponse(text)))
}

type promptItem struct {
	Name        string
	Quantity    string
	Calories    float64
	HasCalories bool
}

// AnalyzeNutrients reports nutrients that may be lacking from items.
func (c *Client) AnalyzeNutrients(ctx context.Context, items []meal.AnalysisItem) (meal.Analysis, error) {
	data := struct{ Items []promptItem }{Items: make([]promptItem, 0, len(items))}
	for _, it := range items {
		p := promptItem{Name: it.Name, Quantity: it.Quantity}
		if it.Calories != nil {
			p.Calories, p.HasCalories = *it.Calories, true
		}
		data.Items = append(data.Items, p)
	}

	prompt, err := tmpl.Render(analysisPrompt, data)
	if err != nil {
		return meal.Analysis{}, fmt.Errorf("render prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt, nil)
	if err != nil {
		return meal.Analysis{}, fmt.Errorf("analyze nutrients: %w", err)
	}

	return meal.ParseAnalysis([]byte(cleanResponse(text)))
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate sends prompt, plus an optional image, and returns the text of the
// first candidate.
func (c *Client) generate(ctx context.Context, prompt string, img *meal.Image) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	parts := []part{{Text: prompt}}
	if img != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: img.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Bool("image", img != nil).
		Msg("generateContent")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			apiErr.Status, apiErr.Message = er.Error.Status, er.Error.Message
		}
		return "", apiErr
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("response has no candidates")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// cleanResponse strips markdown code fences and any prose around the outermost
// JSON object.
func cleanResponse(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
