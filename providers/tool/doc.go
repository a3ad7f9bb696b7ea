// Package tool provides the typed tool abstraction invoked by the
// orchestration loop and the single name-keyed [Registry] that holds every
// tool.
//
// A [Tool] binds a name and description to a Go function. Its parameter
// schema is derived from the input struct with invopop/jsonschema; incoming
// argument blobs are repaired, checked for required fields and validated
// against that schema before the function runs. Create tools with [NewTool]
// and advertise the active subset with [Registry.Select].
package tool
