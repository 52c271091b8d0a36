package domain

import "errors"

// Error classes that can be checked with errors.Is(). Everything except
// ErrServer is a request validation error reported directly to the caller.
var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a label is already taken
	ErrDuplicate = errors.New("entity already exists")

	// ErrBlocked is returned when dependent state prevents the operation
	ErrBlocked = errors.New("operation blocked")

	// ErrBadArgument is returned for structurally invalid requests
	ErrBadArgument = errors.New("bad argument")

	// ErrProjectMismatch is returned when one project reaches into another's resources
	ErrProjectMismatch = errors.New("project mismatch")

	// ErrAllocationExhausted is returned when the identifier pool is empty
	ErrAllocationExhausted = errors.New("no free network identifiers")

	// ErrIllegalState is returned when an entity's state forbids the operation
	ErrIllegalState = errors.New("illegal state")

	// ErrServer is returned for driver, transport and storage failures
	ErrServer = errors.New("server error")
)
