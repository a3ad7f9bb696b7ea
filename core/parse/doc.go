// Package parse decodes JSON emitted by language models. Models occasionally
// produce argument blobs with single quotes, trailing commas, unquoted keys or
// schema-style {"type": ..., "value": ...} envelopes; the decoders here repair
// and unwrap those before giving up with a descriptive error.
//
// [DecodeObject] is the entry point for tool-call arguments; [ParseStringAs]
// decodes into any JSON-compatible type.
package parse
