// Package logging builds the *slog.Logger used across the agent. It supports
// a compact single-line format for terminals and JSON for log aggregation.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format is the output format of the logger.
type Format string

const (
	// FormatCompact writes one line per record:
	// 2025-11-03 10:40:35  INFO search request failed, retrying → {"attempt":1}
	FormatCompact Format = "compact"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat maps a format name to a [Format]. Unknown names fall back to
// [FormatCompact].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// ParseLevel parses DEBUG, INFO, WARN/WARNING or ERROR (case-insensitive).
// An empty string yields INFO.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Options configures [New].
type Options struct {
	Format Format
	Level  slog.Level
	// Output defaults to os.Stderr so stdout stays reserved for answers.
	Output io.Writer
}

// New returns a logger writing to opts.Output in opts.Format.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	switch opts.Format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{Level: opts.Level}))
	default:
		return slog.New(NewCompactHandler(opts.Output, opts.Level))
	}
}

// CompactHandler is a slog.Handler producing "time LEVEL message → {attrs}"
// lines. Attributes are JSON encoded; groups prefix attribute keys with
// "group.".
type CompactHandler struct {
	mu     *sync.Mutex
	output io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewCompactHandler returns a [CompactHandler] writing to w at the given
// minimum level.
func NewCompactHandler(w io.Writer, level slog.Leveler) *CompactHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &CompactHandler{mu: &sync.Mutex{}, output: w, level: level}
}

var _ slog.Handler = (*CompactHandler)(nil)

// Enabled reports whether records at level are written.
func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes r.
func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = append(buf, fmt.Sprintf("%5s", levelString(r.Level))...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		attrs[attr.Key] = attr.Value.Resolve().Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		attrs[h.prefix(attr.Key)] = attr.Value.Resolve().Any()
		return true
	})

	if len(attrs) > 0 {
		for key, value := range attrs {
			if err, ok := value.(error); ok {
				attrs[key] = err.Error()
			}
		}
		encoded, err := json.Marshal(attrs)
		if err != nil {
			encoded = []byte("[json-error]")
		}
		buf = append(buf, " → "...)
		buf = append(buf, encoded...)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(buf)
	return err
}

// WithAttrs returns a handler that always adds attrs.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, attr := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix(attr.Key), Value: attr.Value})
	}
	return next
}

// WithGroup returns a handler that prefixes subsequent keys with name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *CompactHandler) clone() *CompactHandler {
	return &CompactHandler{
		mu:     h.mu,
		output: h.output,
		level:  h.level,
		attrs:  append([]slog.Attr{}, h.attrs...),
		groups: append([]string{}, h.groups...),
	}
}

func (h *CompactHandler) prefix(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
