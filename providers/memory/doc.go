// Package memory defines the [Provider] interface for the per-query
// conversation: an ordered, append-only slice of [ai.Message] owned by a
// single orchestration run. Read methods return errors so that store-backed
// implementations can surface failures. The reference implementation lives in
// [github.com/leofalp/searchagent/providers/memory/inmemory].
package memory
