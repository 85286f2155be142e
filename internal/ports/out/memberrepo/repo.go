package memberrepo

import (
	"context"
	"time"

	"clubtracker-backend/internal/domain"
)

// Member is the persistence shape used by the member repository. It is an
// internal record, not an HTTP DTO; it is the only place the credential
// hash lives.
type Member struct {
	domain.Member

	// PasswordHash is the bcrypt hash of the member's password. Plaintext
	// is never persisted.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted members.
//
// List returns results ordered by Name ascending (case-insensitive) to
// keep behavior deterministic.
type Repository interface {
	Create(ctx context.Context, m Member) error
	Update(ctx context.Context, m Member) error

	GetByID(ctx context.Context, id domain.MemberID) (Member, error)

	// GetByEmail looks a member up by normalized email for login.
	GetByEmail(ctx context.Context, email string) (Member, error)

	List(ctx context.Context, includeInactive bool) ([]Member, error)
}
