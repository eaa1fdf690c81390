package aspa

import "errors"

// Error kinds returned by the normalizer and both updaters.
var (
	// ErrDuplicateRecord: an Add targets a customer ASN already present in
	// the store, or two Adds in one batch target the same customer ASN.
	ErrDuplicateRecord = errors.New("aspa: duplicate record")

	// ErrRecordNotFound: a Remove targets a customer ASN not present in
	// the store, or two Removes in one batch target the same customer ASN.
	ErrRecordNotFound = errors.New("aspa: record not found")

	// ErrAllocationFailure is defined for completeness of the error kinds;
	// no code in this module returns it.
	ErrAllocationFailure = errors.New("aspa: allocation failure")

	// ErrInvalidArgument: a nil table, UndoUpdate for a socket with no
	// binding, or a Remove operation carrying a non-empty provider list.
	ErrInvalidArgument = errors.New("aspa: invalid argument")

	// ErrGenericError wraps any other collaborator-surfaced failure.
	ErrGenericError = errors.New("aspa: generic error")
)
