package bravesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/leofalp/searchagent/internal/retry"
	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/tool"
)

const (
	// DefaultBaseURL is the Brave Search API root.
	DefaultBaseURL = "https://api.search.brave.com/res/v1"
	// DefaultCount is the number of results requested when count <= 0.
	DefaultCount = 10

	// ToolName is the name the model uses to request a search.
	ToolName        = "search_brave"
	toolDescription = "Search the web using Brave Search API and returns structured search results."
)

// SearchResult is one web hit.
type SearchResult struct {
	Title         string   `json:"title" jsonschema:"description=Title of the result"`
	URL           string   `json:"url" jsonschema:"description=URL of the result"`
	Description   string   `json:"description" jsonschema:"description=Description snippet of the result"`
	ExtraSnippets []string `json:"extra_snippets" jsonschema:"description=Additional excerpts from the page"`
}

// Input holds the arguments of the search_brave tool.
type Input struct {
	Query string `json:"query" jsonschema:"description=The search query string.,required"`
}

// apiResponse is the subset of the Brave response that is mapped.
type apiResponse struct {
	Web *struct {
		Results []webResult `json:"results"`
	} `json:"web"`
}

type webResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	ExtraSnippets []string `json:"extra_snippets"`
}

// Client calls the Brave Search API with a fixed credential.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	policy     retry.Policy
	sleep      retry.SleepFunc
	count      int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. to point at a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger for credential and retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCount sets the number of results the tool adapter requests.
func WithCount(count int) Option {
	return func(c *Client) {
		if count > 0 {
			c.count = count
		}
	}
}

// WithRetryPolicy replaces the default three attempts with 2s and 4s waits.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithSleep replaces the wait between attempts.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New returns a Client authenticating with apiKey. An empty key is accepted;
// searches then log an error and return no results.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		policy:     retry.DefaultPolicy(),
		sleep:      retry.Sleep,
		count:      DefaultCount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to count web results for query. count <= 0 means
// DefaultCount. Every failure path yields an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, query string, count int) []SearchResult {
	results := []SearchResult{}
	if query == "" {
		return results
	}
	if c.apiKey == "" {
		c.logger.ErrorContext(ctx, "missing Brave Search API key")
		return results
	}
	if count <= 0 {
		count = DefaultCount
	}

	err := retry.Do(ctx, c.policy, func(ctx context.Context, _ int) error {
		fetched, err := c.fetch(ctx, query, count)
		if err != nil {
			return err
		}
		results = fetched
		return nil
	},
		retry.WithSleep(c.sleep),
		retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			c.logger.WarnContext(ctx, "search request failed, retrying",
				"attempt", attempt,
				"wait", wait.String(),
				"error", err.Error(),
			)
		}),
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "search failed", "query", query, "error", err.Error())
		return []SearchResult{}
	}
	return results
}

// fetch performs a single attempt.
func (c *Client) fetch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("count", strconv.Itoa(count))
	fullURL := fmt.Sprintf("%s/web/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, utils.TruncateString(string(body), 200))
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	return mapResults(decoded), nil
}

func mapResults(decoded apiResponse) []SearchResult {
	results := []SearchResult{}
	if decoded.Web == nil {
		return results
	}
	for _, r := range decoded.Web.Results {
		snippets := r.ExtraSnippets
		if snippets == nil {
			snippets = []string{}
		}
		results = append(results, SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Description:   r.Description,
			ExtraSnippets: snippets,
		})
	}
	return results
}

// NewTool exposes c as the search_brave tool. Results are requested with the
// count set by WithCount.
func NewTool(c *Client) *tool.Tool[Input, []SearchResult] {
	return tool.NewTool(
		ToolName,
		func(ctx context.Context, input Input) ([]SearchResult, error) {
			return c.Search(ctx, input.Query, c.count), nil
		},
		tool.WithDescription(toolDescription),
	)
}
