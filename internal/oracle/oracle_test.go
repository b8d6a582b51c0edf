package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oracleServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Respond with only `yes` or `no`")

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: reply}})
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestJudgeYes(t *testing.T) {
	srv := oracleServer(t, "yes")
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	ok, err := c.Judge(context.Background(), "Capital of France?", []string{"Paris"}, "the city of paris")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJudgeNo(t *testing.T) {
	srv := oracleServer(t, "No.")
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	ok, err := c.Judge(context.Background(), "Capital of France?", []string{"Paris"}, "London")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJudgeAmbiguousVerdict(t *testing.T) {
	srv := oracleServer(t, "yes and no, it depends")
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	_, err := c.Judge(context.Background(), "q", []string{"a"}, "b")
	assert.Error(t, err)
}

func TestJudgeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, zerolog.Nop())
	_, err := c.Judge(context.Background(), "q", []string{"a"}, "b")
	assert.Error(t, err)
}

func TestJudgeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond}, zerolog.Nop())
	_, err := c.Judge(context.Background(), "q", []string{"a"}, "b")
	assert.Error(t, err)
}

func TestJudgeMissingEndpoint(t *testing.T) {
	c := NewClient(Config{}, zerolog.Nop())
	_, err := c.Judge(context.Background(), "q", []string{"a"}, "b")
	assert.Error(t, err)
}

func TestStaticStub(t *testing.T) {
	ok, err := Static{Verdict: true}.Judge(context.Background(), "q", nil, "c")
	require.NoError(t, err)
	assert.True(t, ok)
}
