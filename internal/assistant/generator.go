package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ml4teachers/helf/internal/logger"
)

// ErrGenerationTimeout marks an assistant call that exceeded its deadline.
// The work is abandoned; callers surface a fallback message, never retry.
var ErrGenerationTimeout = errors.New("assistant did not answer within the deadline")

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces assistant text for a conversation. The language model
// itself is a black box behind this interface.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// HTTPGenerator talks to an OpenAI-compatible chat-completions endpoint.
type HTTPGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPGenerator creates a generator against the given endpoint. timeout
// caps the whole round-trip and is expected to sit between 20s and 60s.
func NewHTTPGenerator(baseURL, apiKey, model string, timeout time.Duration, log *logger.Logger) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the conversation and returns the model's reply text.
func (g *HTTPGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			g.log.Warn("assistant call timed out", "timeout", g.timeout)
			return "", ErrGenerationTimeout
		}
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant backend returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("assistant response did not parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("assistant backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("assistant returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
