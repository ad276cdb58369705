/*
errors.go - Centralized error types for the canonical table

PURPOSE:
  All invalid-mutation-target errors in one place. Callers use errors.Is
  to translate these into no-ops or HTTP status codes; none of them ever
  corrupts existing table state.

SEE ALSO:
  - types.go: Mutators returning these errors
  - session package: Wraps these with its own history errors
*/
package table

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeExists is returned when adding an identity that is already
	// a row key. The existing row is left untouched.
	ErrEmployeeExists = errors.New("employee already exists")

	// ErrEmployeeNotFound is returned when a row key does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrProgramExists is returned when adding a program name that is
	// already a column. The existing column is left untouched.
	ErrProgramExists = errors.New("program already exists")

	// ErrProgramNotFound is returned when a program column does not exist.
	ErrProgramNotFound = errors.New("program not found")

	// ErrNegativeHours is returned when a cell write carries negative hours.
	ErrNegativeHours = errors.New("hours must be non-negative")
)

// IsNotFound returns true if the error indicates a missing row or column.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrProgramNotFound)
}

// IsConflict returns true if the error indicates a duplicate add.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmployeeExists) || errors.Is(err, ErrProgramExists)
}
