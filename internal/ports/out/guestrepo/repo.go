package guestrepo

import (
	"context"
	"errors"

	"clubtracker-backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("guest not found")
	ErrAlreadyExists = errors.New("guest already exists")
)

// Repository provides access to persisted guests. Guests are immutable.
//
// List methods return guests ordered by CheckInTime ascending, then ID.
type Repository interface {
	Create(ctx context.Context, g domain.Guest) error

	GetByID(ctx context.Context, id domain.GuestID) (domain.Guest, error)

	ListByMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.Guest, error)
	ListByMember(ctx context.Context, memberID domain.MemberID) ([]domain.Guest, error)
}
