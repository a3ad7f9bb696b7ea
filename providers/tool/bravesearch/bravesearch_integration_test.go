//go:build integration

package bravesearch

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestAPIIntegration_BasicSearch queries the real Brave Search API.
// Run with: go test -tags=integration ./providers/tool/bravesearch/...
// Requires: BRAVE_SEARCH_AI_API_KEY environment variable
func TestAPIIntegration_BasicSearch(t *testing.T) {
	apiKey := os.Getenv("BRAVE_SEARCH_AI_API_KEY")
	if apiKey == "" {
		t.Skip("BRAVE_SEARCH_AI_API_KEY not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := New(apiKey).Search(ctx, "Go programming language", 5)
	if len(results) == 0 {
		t.Fatal("no results returned")
	}
	for i, r := range results {
		if r.URL == "" {
			t.Errorf("result %d has empty URL", i)
		}
		if r.ExtraSnippets == nil {
			t.Errorf("result %d has nil extra snippets", i)
		}
	}
}
