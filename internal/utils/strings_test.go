package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONToString(t *testing.T) {
	compact := JSONToString(map[string]int{"a": 1})
	assert.Equal(t, `{"a":1}`, compact)

	indented := JSONToString([]string{"x"}, true)
	assert.Equal(t, "[\n  \"x\"\n]", indented)

	broken := JSONToString(make(chan int))
	assert.True(t, strings.HasPrefix(broken, `{"error":`), broken)
}

func TestTruncateString(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "shorter than max", input: "hello", maxLen: 10, want: "hello"},
		{name: "exactly max", input: "hello", maxLen: 5, want: "hello"},
		{name: "longer than max", input: "hello world", maxLen: 5, want: "hello... (truncated, total: 11 chars)"},
		{name: "zero uses default", input: "short", maxLen: 0, want: "short"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TruncateString(tc.input, tc.maxLen))
		})
	}

	long := strings.Repeat("a", DefaultMaxStringLength+1)
	assert.Contains(t, TruncateString(long, -1), "(truncated, total: 501 chars)")
}
