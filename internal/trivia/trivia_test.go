package trivia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolFallsBackToBuiltins(t *testing.T) {
	p := NewPool(nil)
	require.Positive(t, p.Len())

	q, answers := p.Pick()
	assert.NotEmpty(t, q)
	assert.NotEmpty(t, answers)
}

func TestPoolReplace(t *testing.T) {
	p := NewPool(nil)

	p.Replace([]QA{{Question: "Only question?", Answers: []string{"yes"}}})
	assert.Equal(t, 1, p.Len())

	q, answers := p.Pick()
	assert.Equal(t, "Only question?", q)
	assert.Equal(t, []string{"yes"}, answers)

	// Empty replacements are ignored so the pool never goes dry.
	p.Replace(nil)
	assert.Equal(t, 1, p.Len())
}

func TestOpenTDBFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.php", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("amount"))
		w.Write([]byte(`{
			"response_code": 0,
			"results": [
				{"question": "Who wrote &quot;Hamlet&quot;?", "correct_answer": "William Shakespeare"},
				{"question": "2 + 2?", "correct_answer": "4"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewOpenTDBClient(srv.URL, nil)
	qas, err := c.Fetch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, qas, 2)
	assert.Equal(t, `Who wrote "Hamlet"?`, qas[0].Question, "HTML entities are unescaped")
	assert.Equal(t, []string{"William Shakespeare"}, qas[0].Answers)
}

func TestOpenTDBFetchErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code": 2, "results": []}`))
	}))
	defer srv.Close()

	c := NewOpenTDBClient(srv.URL, nil)
	_, err := c.Fetch(context.Background(), 3)
	assert.Error(t, err)
}

func TestOpenTDBFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenTDBClient(srv.URL, nil)
	_, err := c.Fetch(context.Background(), 3)
	assert.Error(t, err)
}
