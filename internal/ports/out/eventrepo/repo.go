package eventrepo

import (
	"context"
	"time"

	"clubtracker-backend/internal/domain"
)

// Event is the persistence shape used by the volunteer event repository.
type Event struct {
	domain.VolunteerEvent

	// Version is the optimistic-concurrency stamp. Save fails with
	// ErrVersionConflict when the caller's copy is stale.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted volunteer events.
//
// List returns events ordered by Date ascending, then ID, to keep
// behavior deterministic.
type Repository interface {
	Create(ctx context.Context, e Event) error

	// Save overwrites the event identified by e.ID if e.Version matches the
	// stored version, then increments the stored version.
	Save(ctx context.Context, e Event) error

	GetByID(ctx context.Context, id domain.EventID) (Event, error)

	List(ctx context.Context) ([]Event, error)
}
