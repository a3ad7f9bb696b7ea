// Package openai implements [ai.Provider] over the OpenAI Chat Completions
// endpoint (/v1/chat/completions). Any OpenAI-compatible server works by
// pointing [WithBaseURL] at it.
//
// Tools are advertised as "function" tools with tool_choice "auto"; tool
// calls in the reply are returned unmodified in [ai.ChatResponse.ToolCalls].
package openai
