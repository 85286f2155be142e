package meetingrepo

import "errors"

var (
	ErrNotFound      = errors.New("meeting not found")
	ErrAlreadyExists = errors.New("meeting already exists")

	// ErrVersionConflict indicates a concurrent writer updated the meeting
	// between the caller's read and save.
	ErrVersionConflict = errors.New("meeting version conflict")
)
