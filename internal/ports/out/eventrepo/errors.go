package eventrepo

import "errors"

var (
	ErrNotFound      = errors.New("event not found")
	ErrAlreadyExists = errors.New("event already exists")

	// ErrVersionConflict indicates a concurrent writer updated the event
	// between the caller's read and save.
	ErrVersionConflict = errors.New("event version conflict")
)
