package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
)

// OllamaClient verifies heuristic findings against a local Ollama model.
type OllamaClient struct {
	BaseURL string
	Model   string
	client  *retryablehttp.Client
	log     *logrus.Entry
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

// Verdict is the model's opinion on one finding.
type Verdict struct {
	Valid      bool
	Confidence float64
	Reason     string
}

func NewClient(baseURL, model string) *OllamaClient {
	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 60 * time.Second

	return &OllamaClient{
		BaseURL: baseURL,
		Model:   model,
		client:  rc,
		log:     logging.Component("ai"),
	}
}

// Ping checks if the Ollama instance is reachable and the model answers
func (c *OllamaClient) Ping(ctx context.Context) error {
	_, err := c.generate(ctx, "ping", false)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.BaseURL, err)
	}
	return nil
}

// Verify asks the model whether value, seen inside snippet, really is PII
// of the given category.
func (c *OllamaClient) Verify(ctx context.Context, category models.FindingType, value, snippet string) (Verdict, error) {
	prompt := buildVerifyPrompt(category, value, snippet)

	raw, err := c.generate(ctx, prompt, true)
	if err != nil {
		return Verdict{}, err
	}
	return parseVerdict(raw)
}

func (c *OllamaClient) generate(ctx context.Context, prompt string, jsonFormat bool) (string, error) {
	c.log.WithField("chars", len(prompt)).Debug("sending prompt")

	reqBody := GenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	}
	if jsonFormat {
		reqBody.Format = "json"
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API returned status %d", resp.StatusCode)
	}

	response := gjson.GetBytes(body, "response")
	if !response.Exists() {
		return "", fmt.Errorf("ollama response has no %q field", "response")
	}

	text := strings.TrimSpace(response.String())
	c.log.WithField("response", truncate(text, 200)).Debug("received answer")
	return text, nil
}

// parseVerdict reads {"valid": bool, "confidence": float, "reason": str}.
// Bare YES/NO answers are accepted as a fallback.
func parseVerdict(raw string) (Verdict, error) {
	clean := cleanMarkdown(raw)

	if gjson.Valid(clean) {
		res := gjson.Parse(clean)
		valid := res.Get("valid")
		if !valid.Exists() {
			return Verdict{}, fmt.Errorf("failed to parse AI response: missing %q", "valid")
		}
		conf := res.Get("confidence").Float()
		if conf <= 0 || conf > 1 {
			// Default confidence if missing or out of range
			conf = 0.8
		}
		return Verdict{Valid: valid.Bool(), Confidence: conf, Reason: res.Get("reason").String()}, nil
	}

	ans := strings.ToUpper(clean)
	switch {
	case strings.HasPrefix(ans, "YES"):
		return Verdict{Valid: true, Confidence: 0.9}, nil
	case strings.HasPrefix(ans, "NO"):
		return Verdict{Valid: false, Confidence: 0.1}, nil
	}
	return Verdict{}, fmt.Errorf("failed to parse AI response: %q", truncate(raw, 80))
}

func cleanMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
