package urlcontent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/searchagent/internal/utils"
	"github.com/leofalp/searchagent/providers/tool"
)

const (
	// DefaultEndpoint is the content-extraction service.
	DefaultEndpoint = "https://fun-readable-cd6ed9e43b50.herokuapp.com/convert"

	// ToolName is the name the model uses to request page content.
	ToolName        = "get_url_content"
	toolDescription = "Retrieve and parse content from a given URL."
)

// ContentRecord is the outcome of one extraction. When Error is set, Title
// and Text are empty.
type ContentRecord struct {
	Title string `json:"title" jsonschema:"description=Title of the page"`
	Text  string `json:"text" jsonschema:"description=Readable text of the page"`
	Error string `json:"error,omitempty" jsonschema:"description=Failure description when extraction failed"`
}

// HasError reports whether r describes a failed extraction.
func (r ContentRecord) HasError() bool {
	return r.Error != ""
}

func errorRecord(format string, args ...any) ContentRecord {
	return ContentRecord{Error: fmt.Sprintf(format, args...)}
}

// Input holds the arguments of the get_url_content tool.
type Input struct {
	URL string `json:"url" jsonschema:"description=The URL from which to fetch the content.,required"`
}

type convertRequest struct {
	URL    string `json:"url"`
	IsBlog bool   `json:"is_blog"`
}

// convertResponse uses pointers so absent fields can be told apart from
// empty ones.
type convertResponse struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// Client calls the extraction endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	markdown   bool
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the extraction endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
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

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMarkdown converts HTML found in the extracted text to Markdown.
func WithMarkdown() Option {
	return func(c *Client) {
		c.markdown = true
	}
}

// New returns a Client for DefaultEndpoint unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch extracts the content of pageURL in a single attempt.
func (c *Client) Fetch(ctx context.Context, pageURL string) ContentRecord {
	payload, err := json.Marshal(convertRequest{URL: pageURL, IsBlog: true})
	if err != nil {
		return errorRecord("Error: %s", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errorRecord("Error: %s", err.Error())
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "content request failed", "url", pageURL, "error", err.Error())
		return errorRecord("Error: %s", err.Error())
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "content request rejected", "url", pageURL, "status", resp.StatusCode)
		return errorRecord("Error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorRecord("Error: %s", err.Error())
	}

	record, err := decodeRecord(body)
	if err != nil {
		c.logger.WarnContext(ctx, "content response rejected", "url", pageURL, "error", err.Error())
		return errorRecord("Error parsing response: %s", err.Error())
	}

	if c.markdown {
		converted, err := htmltomarkdown.ConvertString(record.Text)
		if err != nil {
			c.logger.WarnContext(ctx, "markdown conversion failed, keeping text", "url", pageURL, "error", err.Error())
		} else {
			record.Text = converted
		}
	}
	return record
}

// decodeRecord maps the body into a ContentRecord, rejecting non-object
// bodies, unknown keys, missing fields and non-string values.
func decodeRecord(body []byte) (ContentRecord, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	var decoded convertResponse
	if err := decoder.Decode(&decoded); err != nil {
		return ContentRecord{}, err
	}
	if decoder.More() {
		return ContentRecord{}, errors.New("unexpected data after JSON object")
	}
	if decoded.Title == nil {
		return ContentRecord{}, errors.New(`missing field "title"`)
	}
	if decoded.Text == nil {
		return ContentRecord{}, errors.New(`missing field "text"`)
	}
	return ContentRecord{Title: *decoded.Title, Text: *decoded.Text}, nil
}

// NewTool exposes c as the get_url_content tool.
func NewTool(c *Client) *tool.Tool[Input, ContentRecord] {
	return tool.NewTool(
		ToolName,
		func(ctx context.Context, input Input) (ContentRecord, error) {
			return c.Fetch(ctx, input.URL), nil
		},
		tool.WithDescription(toolDescription),
	)
}
