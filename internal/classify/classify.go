// Package classify assigns category labels to article text using a
// hosted zero-shot classification endpoint.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/krishisewa/agrinews/internal/config"
)

// Uncategorized is the fallback label for low-confidence or failed
// classifications.
const Uncategorized = "uncategorized"

// maxTextLen bounds the text submitted per classification call.
const maxTextLen = 1000

// descriptions maps each category key to the prose description sent to
// the classifier as a candidate label. Keys must stay in sync with the
// seeded news_category table.
var descriptions = map[string]string{
	"crop_pests":            "Information about crop diseases, pests, and plant health issues",
	"market_prices":         "Agricultural market prices, commodity prices, and market trends",
	"weather_advisory":      "Weather forecasts, climate information, and weather-related agricultural advice",
	"policy_update":         "Government policies, regulations, and agricultural policy changes",
	"technology_innovation": "New agricultural technologies, innovations, and farming methods",
	"fertilizer_seeds":      "Information about fertilizers, seeds, and agricultural inputs",
	"irrigation_water":      "Irrigation systems, water management, and water-related agricultural topics",
	"livestock_dairy":       "Livestock farming, dairy production, and animal husbandry",
	"organic_farming":       "Organic farming practices, sustainable agriculture, and eco-friendly farming",
}

// keyByDescription is the exact reverse lookup from classifier output
// back to the canonical category key.
var keyByDescription = func() map[string]string {
	m := make(map[string]string, len(descriptions))
	for key, desc := range descriptions {
		m[desc] = key
	}
	return m
}()

func candidateLabels() []string {
	labels := make([]string, 0, len(descriptions))
	for _, desc := range descriptions {
		labels = append(labels, desc)
	}
	return labels
}

// Categorizer maps article text to one category key.
type Categorizer interface {
	Categorize(ctx context.Context, title, content string) string
}

// Classifier calls a Hugging Face style zero-shot inference endpoint.
type Classifier struct {
	endpoint  string
	model     string
	token     string
	threshold float64
	client    *http.Client
}

// unavailable is the degraded variant used when the classifier cannot
// be configured. Every call returns the fallback label.
type unavailable struct{}

func (unavailable) Categorize(context.Context, string, string) string { return Uncategorized }

// New builds a Categorizer from config. A missing API token is not an
// error; it selects the degraded variant that labels everything
// uncategorized.
func New(cfg config.Classifier) Categorizer {
	token := os.Getenv(cfg.APIKeyEnv)
	if token == "" {
		log.Printf("classifier disabled: %s not set, all articles will be uncategorized", cfg.APIKeyEnv)
		return unavailable{}
	}
	return &Classifier{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		token:     token,
		threshold: cfg.Threshold,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Categorize classifies the concatenated title and content. Any call
// failure degrades to the fallback label rather than propagating.
func (c *Classifier) Categorize(ctx context.Context, title, content string) string {
	text := truncate(title+" "+content, maxTextLen)

	labels, scores, err := c.classify(ctx, text)
	if err != nil {
		log.Printf("classification failed: %v", err)
		return Uncategorized
	}
	return decide(labels, scores, c.threshold)
}

func (c *Classifier) classify(ctx context.Context, text string) ([]string, []float64, error) {
	body := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"candidate_labels": candidateLabels(),
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/"+c.model, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("inference API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("inference API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}
	return result.Labels, result.Scores, nil
}

// decide maps a ranked classifier result to a category key. The top
// label must match a known description exactly and clear the threshold.
func decide(labels []string, scores []float64, threshold float64) string {
	if len(labels) == 0 || len(scores) == 0 {
		return Uncategorized
	}
	key, ok := keyByDescription[labels[0]]
	if !ok {
		return Uncategorized
	}
	if scores[0] <= threshold {
		return Uncategorized
	}
	return key
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
