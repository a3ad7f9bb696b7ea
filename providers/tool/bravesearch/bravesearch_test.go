package bravesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/searchagent/providers/tool"
)

const sampleBody = `{
  "type": "search",
  "web": {
    "type": "search",
    "results": [
      {"title": "Go", "url": "https://go.dev", "description": "The Go programming language", "extra_snippets": ["Build simple, secure, scalable systems"]},
      {"url": "https://example.com"}
    ]
  }
}`

// recorder captures the waits requested between attempts.
type recorder struct {
	waits []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) (*Client, *atomic.Int32, *recorder, *bytes.Buffer) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	rec := &recorder{}
	client := New(apiKey,
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithSleep(rec.sleep),
	)
	return client, &calls, rec, &logs
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(sampleBody))
}

func TestSearchEmptyQuery(t *testing.T) {
	client, calls, _, _ := newTestClient(t, "key", okHandler)

	results := client.Search(context.Background(), "", 10)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, calls.Load())
}

func TestSearchMissingAPIKey(t *testing.T) {
	client, calls, _, logs := newTestClient(t, "", okHandler)

	results := client.Search(context.Background(), "golang", 10)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, calls.Load())
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "missing Brave Search API key")
}

func TestSearchRequestAndMapping(t *testing.T) {
	client, calls, rec, _ := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/web/search", r.URL.Path)
		assert.Equal(t, "golang generics", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		okHandler(w, r)
	})

	results := client.Search(context.Background(), "golang generics", 0)

	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, rec.waits)
	require.Len(t, results, 2)
	assert.Equal(t, SearchResult{
		Title:         "Go",
		URL:           "https://go.dev",
		Description:   "The Go programming language",
		ExtraSnippets: []string{"Build simple, secure, scalable systems"},
	}, results[0])
	assert.Equal(t, SearchResult{URL: "https://example.com", ExtraSnippets: []string{}}, results[1])

	encoded, err := json.Marshal(results[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"","url":"https://example.com","description":"","extra_snippets":[]}`, string(encoded))
}

func TestSearchCustomCount(t *testing.T) {
	client, _, _, _ := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		okHandler(w, r)
	})

	assert.Len(t, client.Search(context.Background(), "golang", 3), 2)
}

func TestSearchRetryRecovers(t *testing.T) {
	var attempt atomic.Int32
	client, calls, rec, logs := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		if attempt.Add(1) <= 2 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		okHandler(w, r)
	})

	results := client.Search(context.Background(), "golang", 10)

	assert.Len(t, results, 2)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.waits)
	assert.Equal(t, 2, strings.Count(logs.String(), "search request failed, retrying"))
	assert.Equal(t, 2, strings.Count(logs.String(), "level=WARN"))
}

func TestSearchUndecodableBodyIsRetried(t *testing.T) {
	var attempt atomic.Int32
	client, calls, rec, _ := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		if attempt.Add(1) == 1 {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
			return
		}
		okHandler(w, r)
	})

	results := client.Search(context.Background(), "golang", 10)

	assert.Len(t, results, 2)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.waits)
}

func TestSearchAllAttemptsFail(t *testing.T) {
	client, calls, rec, _ := newTestClient(t, "key", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	results := client.Search(context.Background(), "golang", 10)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.waits)
}

func TestSearchCancelledDuringBackoff(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	client := New("key",
		WithBaseURL(server.URL),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)

	results := client.Search(ctx, "golang", 10)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTool(t *testing.T) {
	client, calls, _, _ := newTestClient(t, "key", okHandler)
	search := NewTool(client)

	info := search.ToolInfo()
	assert.Equal(t, "search_brave", info.Name)
	assert.Equal(t, "Search the web using Brave Search API and returns structured search results.", info.Description)
	assert.Equal(t, []string{"query"}, info.Parameters.Required)

	out, err := search.Call(context.Background(), `{"query": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	expected, err := json.MarshalIndent(client.Search(context.Background(), "x", DefaultCount), "", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(expected), out)
	assert.True(t, strings.HasPrefix(out, "[\n  {\n"))

	_, err = search.Call(context.Background(), `{"q": "x"}`)
	assert.True(t, errors.Is(err, tool.ErrMissingArgument))
	assert.EqualError(t, err, "No query found in arguments")
}

func TestToolUsesConfiguredCount(t *testing.T) {
	var gotCount string
	client, _, _, _ := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		okHandler(w, r)
	})
	WithCount(3)(client)

	_, err := NewTool(client).Call(context.Background(), `{"query": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, "3", gotCount)
}
