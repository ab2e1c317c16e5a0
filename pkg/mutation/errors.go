package mutation

import "fmt"

// InvalidConstructionError indicates a mutation violated its construction
// preconditions. It is raised at construction time, never by the engine.
type InvalidConstructionError struct {
	Reason string
}

// Error returns the error message.
func (e *InvalidConstructionError) Error() string {
	return fmt.Sprintf("invalid mutation construction: %s", e.Reason)
}
