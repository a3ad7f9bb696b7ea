// Package inmemory provides a concurrency-safe, slice-backed implementation
// of [memory.Provider]. Nothing is persisted; a store lives as long as the
// query run that created it. The main entry point is [New].
package inmemory
