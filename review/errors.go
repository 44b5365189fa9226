package review

import (
	"errors"
	"fmt"
)

// ErrDuplicateDimension is returned when the same dimension id appears more
// than once in a requested evaluation or in results being aggregated.
var ErrDuplicateDimension = errors.New("duplicate dimension")

// CollaboratorError indicates the collaborator could not produce a verdict
// for a dimension: transport failure, timeout, or exhausted fallbacks. The
// session surfaces it per dimension and never retries it.
type CollaboratorError struct {
	Dimension string
	Err       error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator unavailable for %s: %v", e.Dimension, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsCollaboratorUnavailable reports whether err carries a collaborator
// availability failure.
func IsCollaboratorUnavailable(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

// InvalidTierError indicates the collaborator returned a tier label outside
// the dimension's declared tier set.
type InvalidTierError struct {
	Dimension string
	Tier      string
}

func (e *InvalidTierError) Error() string {
	return fmt.Sprintf("invalid tier %q for dimension %s", e.Tier, e.Dimension)
}
