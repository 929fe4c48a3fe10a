package generator

import "fmt"

// UnsupportedTypeError reports a field type the generator has no algorithm
// for. It is fatal for the run; unknown types are never substituted with a
// scalar fallback.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported field type: %s", e.Type)
}
