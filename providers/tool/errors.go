package tool

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is returned when a name is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrMissingArgument matches every *MissingArgumentError.
	ErrMissingArgument = errors.New("missing argument")
	// ErrInvalidArguments wraps malformed or schema-violating argument blobs.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// MissingArgumentError reports a required argument absent from a call. Its
// message is the tool-result text handed back to the model.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("No %s found in arguments", e.Name)
}

// Is makes errors.Is(err, ErrMissingArgument) hold.
func (e *MissingArgumentError) Is(target error) bool {
	return target == ErrMissingArgument
}
