package tools

import "fmt"

// ActionError is an expected failure of a tool action, such as a missing
// file. Its message is written for the model and reported as
// "Error: <message>".
type ActionError struct {
	Message string
	Err     error
}

// NewActionError creates an ActionError wrapping err.
func NewActionError(err error, format string, args ...interface{}) *ActionError {
	return &ActionError{Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
