package hoursrepo

import (
	"context"
	"errors"

	"clubtracker-backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("volunteer hour record not found")
	ErrAlreadyExists = errors.New("volunteer hour record already exists")

	// ErrOpenRecordExists indicates the member already has an open
	// check-in for the event.
	ErrOpenRecordExists = errors.New("open volunteer check-in already exists")

	// ErrAlreadyClosed indicates the record was checked out by a
	// concurrent writer.
	ErrAlreadyClosed = errors.New("volunteer hour record already closed")
)

// Repository provides access to persisted volunteer hour records.
//
// List methods return records ordered by CheckInTime ascending, then ID.
type Repository interface {
	// Create persists a new open record. It fails with ErrOpenRecordExists
	// when the member already has an open record for the event, which
	// backs the one-open-record invariant.
	Create(ctx context.Context, rec domain.VolunteerHourRecord) error

	// GetOpen returns the open record for (member, event), or ErrNotFound.
	GetOpen(ctx context.Context, memberID domain.MemberID, eventID domain.EventID) (domain.VolunteerHourRecord, error)

	// Close overwrites the record identified by rec.ID with its checked-out
	// state. It fails with ErrNotFound if the record does not exist and
	// ErrAlreadyClosed if the stored record is no longer open.
	Close(ctx context.Context, rec domain.VolunteerHourRecord) error

	// ListCompletedByMember returns only checked-out records.
	ListCompletedByMember(ctx context.Context, memberID domain.MemberID) ([]domain.VolunteerHourRecord, error)

	ListByEvent(ctx context.Context, eventID domain.EventID) ([]domain.VolunteerHourRecord, error)
}
