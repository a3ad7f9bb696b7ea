// Package overview records what a single agent run consumed: model turns,
// tool calls by name, token usage and wall-clock time, plus an optional cost
// estimate when the model's pricing is known.
package overview
