package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGameExists is returned when a create collides on the lowercase
	// name key.
	ErrGameExists = errors.New("a game with that name already exists")
	// ErrGameNotFound is returned for lookups of missing games.
	ErrGameNotFound = errors.New("game not found")
	// ErrRecomputeInProgress is returned when a popularity recompute is
	// refused because another run holds the scheduling lock.
	ErrRecomputeInProgress = errors.New("popularity recompute already in progress")
)

// ReferenceKind names a reference store for error reporting.
type ReferenceKind string

const (
	ReferenceTheme            ReferenceKind = "theme"
	ReferenceTagCustom        ReferenceKind = "custom tag"
	ReferenceTagAccessibility ReferenceKind = "accessibility tag"
)

// ReferenceNotFoundError reports that one or more requested names have no
// match in a reference store. Resolution is all-or-nothing, so the error
// carries the domain rather than a partial result.
type ReferenceNotFoundError struct {
	Kind ReferenceKind
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("one or more %ss do not exist", e.Kind)
}

// IsReferenceNotFound reports whether err is a ReferenceNotFoundError of
// any kind.
func IsReferenceNotFound(err error) bool {
	var target *ReferenceNotFoundError
	return errors.As(err, &target)
}

// InvalidFilterValueError reports a malformed filter request field, such
// as an unknown sort, an out-of-range page, or an unrecognized build
// token.
type InvalidFilterValueError struct {
	Field string
	Value string
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("invalid value %q for filter field %q", e.Value, e.Field)
}

// UpstreamError reports an I/O failure against an external collaborator
// (the catalog store or the analytics service).
type UpstreamError struct {
	Collaborator string
	Err          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// BatchWriteFailureError reports a failed popularity bulk write. Items not
// reached by the batch keep their pre-run scores; recovery is the next
// scheduled run, not a resume.
type BatchWriteFailureError struct {
	Err error
}

func (e *BatchWriteFailureError) Error() string {
	return fmt.Sprintf("popularity batch write failed: %v", e.Err)
}

func (e *BatchWriteFailureError) Unwrap() error { return e.Err }
