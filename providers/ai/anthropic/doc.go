// Package anthropic implements [ai.Provider] for Anthropic's Messages API on
// top of the official anthropic-sdk-go client.
//
// System messages are lifted into the request's system field, assistant tool
// calls become tool_use blocks, and consecutive tool results are merged into
// a single user turn of tool_result blocks, as the API requires.
package anthropic
