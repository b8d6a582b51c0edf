package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"time"
)

// OpenTDBClient fetches trivia from the Open Trivia DB (no API key).
type OpenTDBClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenTDBClient(baseURL string, httpClient *http.Client) *OpenTDBClient {
	if baseURL == "" {
		baseURL = "https://opentdb.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &OpenTDBClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type openTDBQuestion struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []openTDBQuestion `json:"results"`
}

// Fetch retrieves up to amount questions, unescaping the HTML entities
// OpenTDB embeds in its payloads.
func (c *OpenTDBClient) Fetch(ctx context.Context, amount int) ([]QA, error) {
	values := url.Values{}
	values.Set("amount", fmt.Sprint(amount))
	values.Set("type", "multiple")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api.php?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("opentdb non-200: %d", resp.StatusCode)
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response code %d", payload.ResponseCode)
	}

	qas := make([]QA, 0, len(payload.Results))
	for _, r := range payload.Results {
		qas = append(qas, QA{
			Question: html.UnescapeString(r.Question),
			Answers:  []string{html.UnescapeString(r.CorrectAnswer)},
		})
	}
	return qas, nil
}
