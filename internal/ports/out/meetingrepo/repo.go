package meetingrepo

import (
	"context"
	"time"

	"clubtracker-backend/internal/domain"
)

// Meeting is the persistence shape used by the meeting repository.
type Meeting struct {
	domain.Meeting

	// Version is the optimistic-concurrency stamp. Save fails with
	// ErrVersionConflict when the caller's copy is stale.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted meetings.
//
// List returns meetings ordered by Date ascending, then ID, to keep
// behavior deterministic.
type Repository interface {
	Create(ctx context.Context, m Meeting) error

	// Save overwrites the meeting identified by m.ID if m.Version matches
	// the stored version, then increments the stored version.
	Save(ctx context.Context, m Meeting) error

	GetByID(ctx context.Context, id domain.MeetingID) (Meeting, error)

	List(ctx context.Context) ([]Meeting, error)
}
