package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Disclaimer is appended to every advisory answer, including the failure
// substitute.
const Disclaimer = "This is AI-generated reference only - verify with a professional lawyer."

const (
	failureBody  = "Sorry, couldn't fetch info."
	systemPrompt = "You are a UK immigration solicitor. Provide accurate, professional advice based on 2025 rules."
)

// Client calls an OpenRouter-compatible chat completions API. Ask never
// returns an error: every transport or parse failure collapses to a fixed
// apology body so the dialog can always reply with something.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, apiKey, model string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Ask answers a free-text question given a short context string. The
// disclaimer suffix is always present in the returned text.
func (c *Client) Ask(ctx context.Context, question, contextText string) string {
	answer, err := c.completion(ctx, question, contextText)
	if err != nil {
		c.log.Warn("advisory request failed", zap.Error(err))
		return failureBody + " " + Disclaimer
	}
	return answer + " " + Disclaimer
}

func (c *Client) completion(ctx context.Context, question, contextText string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context: %s\n%s", contextText, question)},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	answer := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("completion returned empty content")
	}
	return answer, nil
}
