package attendancerepo

import (
	"context"
	"errors"

	"clubtracker-backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("attendance record not found")
	ErrAlreadyExists = errors.New("attendance record already exists")
)

// Repository provides access to persisted attendance records. Records are
// immutable; there is no update operation.
//
// List methods return records ordered by CheckInTime ascending, then ID.
type Repository interface {
	// Create persists a new record. It fails with ErrAlreadyExists when a
	// record for the same (member, meeting) pair is already stored, which
	// backs the at-most-one-check-in invariant.
	Create(ctx context.Context, rec domain.AttendanceRecord) error

	// GetByMemberAndMeeting returns the record for the pair, or ErrNotFound.
	GetByMemberAndMeeting(ctx context.Context, memberID domain.MemberID, meetingID domain.MeetingID) (domain.AttendanceRecord, error)

	ListByMember(ctx context.Context, memberID domain.MemberID) ([]domain.AttendanceRecord, error)
	ListByMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.AttendanceRecord, error)

	CountByMember(ctx context.Context, memberID domain.MemberID) (int, error)
}
