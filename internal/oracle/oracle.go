package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds connection details for the judgment service.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client asks a chat-completions style model whether a free-text answer
// is equivalent to an accepted one. It is best-effort: callers treat any
// error as "not judged" and fall back to exact matching.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// NewClient builds an oracle client with a bounded HTTP timeout.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		logger:     logger.With().Str("component", "oracle").Logger(),
	}
}

// Judge returns whether candidate is an acceptable answer. The model is
// instructed to answer only yes or no; anything ambiguous is an error.
func (c *Client) Judge(ctx context.Context, question string, accepted []string, candidate string) (bool, error) {
	if c.config.Endpoint == "" {
		return false, fmt.Errorf("oracle endpoint not configured")
	}

	prompt := fmt.Sprintf(
		"The question was: ```%s```\nIs ```%s``` correct, if the accepted answers are ```%s```? Respond with only `yes` or `no`.",
		question, candidate, strings.Join(accepted, " / "),
	)

	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode oracle payload: %w", err)
	}
	if len(payload.Choices) == 0 {
		return false, fmt.Errorf("oracle returned no choices")
	}

	verdict := strings.ToLower(strings.TrimSpace(payload.Choices[0].Message.Content))
	if len(verdict) > 3 {
		c.logger.Warn().Str("verdict", verdict).Msg("oracle response longer than expected")
	}

	yes := strings.Contains(verdict, "yes")
	no := strings.Contains(verdict, "no")
	if yes == no {
		return false, fmt.Errorf("ambiguous oracle verdict %q", verdict)
	}
	return yes, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
