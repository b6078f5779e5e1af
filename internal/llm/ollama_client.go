package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Client generates a completion for a system and user prompt.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// OllamaClient talks to an Ollama compatible /api/generate endpoint.
type OllamaClient struct {
	ollamaURL string
	model     string
	client    *http.Client
}

func NewOllamaClient(url, model string, timeout time.Duration) *OllamaClient {
	if model == "" {
		model = "llama3"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		ollamaURL: strings.TrimRight(url, "/"),
		model:     model,
		client:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string         `json:"model"`
	System string         `json:"system,omitempty"`
	Prompt string         `json:"prompt"`
	Stream bool           `json:"stream"`
	Option map[string]any `json:"options,omitempty"`
}

func (o *OllamaClient) endpoint() string {
	if strings.HasSuffix(o.ollamaURL, "/api/generate") {
		return o.ollamaURL
	}
	return o.ollamaURL + "/api/generate"
}

// Generate sends one non-streaming request. Streamed bodies are aggregated
// as well, since some servers ignore the stream flag.
func (o *OllamaClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	requestBody, err := json.Marshal(generateRequest{
		Model:  o.model,
		System: system,
		Prompt: prompt,
		Option: map[string]any{"temperature": 0.7, "num_predict": 500},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint(), bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	text := AggregateStreamedResponse(string(bodyBytes))
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// LLMResponseChunk is one JSON object of a generate response.
type LLMResponseChunk struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// AggregateStreamedResponse concatenates the "response" fields of a body
// holding one or more newline separated JSON objects.
func AggregateStreamedResponse(body string) string {
	var builder strings.Builder
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		var chunk LLMResponseChunk
		if err := json.Unmarshal([]byte(trimmed), &chunk); err != nil {
			slog.Debug("skipping malformed model chunk", "error", err)
			continue
		}
		builder.WriteString(chunk.Response)
	}
	return builder.String()
}
