package featured

import "fmt"

// LoadError is a source-level failure: the registry file is missing, empty,
// too large, unreadable or not valid JSON. The feature degrades to having no
// featured keywords.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("featured keywords load error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("featured keywords load error (%s): %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ValidationError means the source parsed but its root has the wrong shape.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("featured keywords validation error (%s): %s", e.Path, e.Message)
}

// errorType names the error class for health output.
func errorType(err error) string {
	switch err.(type) {
	case *LoadError:
		return "LoadError"
	case *ValidationError:
		return "ValidationError"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%T", err)
	}
}
