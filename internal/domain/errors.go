package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// Extraction errors
	ErrNoPayload        = errors.New("no structured payload found")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrSchemaViolation  = errors.New("schema violation")
	ErrEmptyResult      = errors.New("empty result")

	// Hierarchy errors
	ErrFolderNotEmpty = errors.New("folder not empty")
	ErrCyclicMove     = errors.New("cyclic move")

	// ErrTransport indicates the upstream completion call failed before any
	// output was produced.
	ErrTransport = errors.New("completion transport failure")
)

// MalformedPayloadError carries a snippet of the text the tolerant parser
// gave up on, so callers can log what the model actually produced.
type MalformedPayloadError struct {
	Snippet string
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload near %q: %v", e.Snippet, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrMalformedPayload
func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// SchemaViolationError reports a parsed value that does not fit the expected
// record shape. Field names the offending field, Reason says what was wrong.
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on %q: %s", e.Field, e.Reason)
}

// Is allows errors.Is() to match against ErrSchemaViolation
func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

// FolderNotEmptyError blocks deletion of a folder that still owns children.
// It names the folder so batch callers can report which item aborted the run.
type FolderNotEmptyError struct {
	FolderID   string
	Name       string
	Subfolders int
	Flashcards int
}

func (e *FolderNotEmptyError) Error() string {
	return fmt.Sprintf("folder %q (%s) is not empty: %d subfolders, %d flashcards",
		e.Name, e.FolderID, e.Subfolders, e.Flashcards)
}

// Is allows errors.Is() to match against ErrFolderNotEmpty
func (e *FolderNotEmptyError) Is(target error) bool {
	return target == ErrFolderNotEmpty
}

// CyclicMoveError blocks a folder re-parenting that would make the folder
// its own ancestor.
type CyclicMoveError struct {
	FolderID string
	TargetID string
}

func (e *CyclicMoveError) Error() string {
	return fmt.Sprintf("moving folder %s under %s would create a cycle", e.FolderID, e.TargetID)
}

// Is allows errors.Is() to match against ErrCyclicMove
func (e *CyclicMoveError) Is(target error) bool {
	return target == ErrCyclicMove
}
