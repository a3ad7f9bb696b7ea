package urlcontent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithEndpoint(server.URL + "/convert"),
		WithHTTPClient(server.Client()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(opts...)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/convert", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]any{"url": "https://go.dev/blog", "is_blog": true}, payload)

		respond(http.StatusOK, `{"title": "The Go Blog", "text": "Posts about Go."}`)(w, r)
	})

	record := client.Fetch(context.Background(), "https://go.dev/blog")
	assert.Equal(t, ContentRecord{Title: "The Go Blog", Text: "Posts about Go."}, record)
	assert.False(t, record.HasError())
}

func TestFetchStatusErrors(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			client := newTestClient(t, respond(status, `{"title": "x", "text": "y"}`))

			record := client.Fetch(context.Background(), "https://example.com")
			assert.Equal(t, ContentRecord{Error: "Error: " + strconv.Itoa(status)}, record)
			assert.True(t, record.HasError())
		})
	}
}

func TestFetch404(t *testing.T) {
	client := newTestClient(t, respond(http.StatusNotFound, "not found"))

	record := client.Fetch(context.Background(), "https://example.com/missing")
	assert.Equal(t, "Error: 404", record.Error)
	assert.Empty(t, record.Title)
	assert.Empty(t, record.Text)
}

func TestFetchParsingErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "<html>oops</html>"},
		{name: "empty body", body: ""},
		{name: "array", body: `[{"title": "x", "text": "y"}]`},
		{name: "null", body: `null`},
		{name: "missing text", body: `{"title": "x"}`},
		{name: "missing title", body: `{"text": "y"}`},
		{name: "unexpected key", body: `{"title": "x", "text": "y", "author": "z"}`},
		{name: "non-string title", body: `{"title": 1, "text": "y"}`},
		{name: "trailing data", body: `{"title": "x", "text": "y"} {"title": "a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(http.StatusOK, tt.body))

			record := client.Fetch(context.Background(), "https://example.com")
			assert.True(t, strings.HasPrefix(record.Error, "Error parsing response: "), record.Error)
			assert.Greater(t, len(record.Error), len("Error parsing response: "))
			assert.Empty(t, record.Title)
			assert.Empty(t, record.Text)
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := New(WithEndpoint(endpoint), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	record := client.Fetch(context.Background(), "https://example.com")

	assert.True(t, strings.HasPrefix(record.Error, "Error: "), record.Error)
	assert.Empty(t, record.Title)
	assert.Empty(t, record.Text)
}

func TestFetchMarkdown(t *testing.T) {
	body := `{"title": "Page", "text": "<h1>Welcome</h1><p>This is a <strong>test</strong>.</p>"}`

	plain := newTestClient(t, respond(http.StatusOK, body)).Fetch(context.Background(), "https://example.com")
	assert.Equal(t, "<h1>Welcome</h1><p>This is a <strong>test</strong>.</p>", plain.Text)

	converted := newTestClient(t, respond(http.StatusOK, body), WithMarkdown()).Fetch(context.Background(), "https://example.com")
	assert.Equal(t, "Page", converted.Title)
	assert.Contains(t, converted.Text, "# Welcome")
	assert.Contains(t, converted.Text, "**test**")
	assert.NotContains(t, converted.Text, "<strong>")
}

func TestTool(t *testing.T) {
	client := newTestClient(t, respond(http.StatusOK, `{"title": "T", "text": "body"}`))
	fetch := NewTool(client)

	info := fetch.ToolInfo()
	assert.Equal(t, "get_url_content", info.Name)
	assert.Equal(t, "Retrieve and parse content from a given URL.", info.Description)
	assert.Equal(t, []string{"url"}, info.Parameters.Required)

	out, err := fetch.Call(context.Background(), `{"url": "https://example.com"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "T", "text": "body"}`, out)

	_, err = fetch.Call(context.Background(), `{}`)
	assert.EqualError(t, err, "No url found in arguments")
}

func TestToolErrorRecordSerialization(t *testing.T) {
	client := newTestClient(t, respond(http.StatusBadGateway, ""))

	out, err := NewTool(client).Call(context.Background(), `{"url": "https://example.com"}`)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]string{"title": "", "text": "", "error": "Error: 502"}, decoded)
	assert.True(t, bytes.Contains([]byte(out), []byte("\n  ")))
}
