// Package react implements the tool-calling orchestration loop. The model
// alternates between requesting tool calls and reading their results until
// it replies with plain text, which becomes the answer.
//
// The main entry point is [New], which takes the send function of a
// configured [client.Client] and the active [tool.Registry]. Use
// [Agent.ProcessUserQuery] for the answer alone or [Agent.Run] for the full
// [Result]. The loop is bounded by [WithMaxTurns].
package react
