package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/attendancerepo"
	"clubtracker-backend/internal/ports/out/meetingrepo"
)

// Service records meeting check-ins and computes attendance statistics.
type Service struct {
	att      attendancerepo.Repository
	meetings meetingrepo.Repository

	// meetingsPerYear is the baseline for attendance percentage.
	meetingsPerYear int

	newRecordID func() domain.AttendanceID
}

func NewService(att attendancerepo.Repository, meetings meetingrepo.Repository, meetingsPerYear int) *Service {
	return &Service{
		att:      att,
		meetings: meetings,
		meetingsPerYear: meetingsPerYear,
		newRecordID: func() domain.AttendanceID {
			return domain.AttendanceID(uuid.NewString())
		},
	}
}

// SetNewRecordIDForTest overrides record ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewRecordIDForTest(fn func() domain.AttendanceID) {
	if fn != nil {
		s.newRecordID = fn
	}
}

// RecordCheckIn records the member's attendance at the meeting. A repeated
// check-in is a benign no-op: the existing record is returned with
// created=false and its original check-in time intact.
func (s *Service) RecordCheckIn(ctx context.Context, memberID domain.MemberID, meetingID domain.MeetingID, at time.Time) (domain.AttendanceRecord, bool, error) {
	if _, err := s.meetings.GetByID(ctx, meetingID); err != nil {
		if errors.Is(err, meetingrepo.ErrNotFound) {
			return domain.AttendanceRecord{}, false, &Error{Status: 404, Code: "MEETING_NOT_FOUND", Message: "meeting not found"}
		}
		return domain.AttendanceRecord{}, false, err
	}

	if existing, err := s.att.GetByMemberAndMeeting(ctx, memberID, meetingID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, attendancerepo.ErrNotFound) {
		return domain.AttendanceRecord{}, false, err
	}

	rec := domain.AttendanceRecord{
		ID:          s.newRecordID(),
		MemberID:    memberID,
		MeetingID:   meetingID,
		CheckInTime: at.UTC(),
	}
	if err := s.att.Create(ctx, rec); err != nil {
		if errors.Is(err, attendancerepo.ErrAlreadyExists) {
			// Lost a race with another check-in for the same pair.
			existing, gerr := s.att.GetByMemberAndMeeting(ctx, memberID, meetingID)
			if gerr != nil {
				return domain.AttendanceRecord{}, false, gerr
			}
			return existing, false, nil
		}
		return domain.AttendanceRecord{}, false, err
	}
	return rec, true, nil
}

// Count returns the number of meetings the member has checked in to.
func (s *Service) Count(ctx context.Context, memberID domain.MemberID) (int, error) {
	return s.att.CountByMember(ctx, memberID)
}

// Percentage returns min(100, round(100 * count / baseline)).
func (s *Service) Percentage(ctx context.Context, memberID domain.MemberID) (int, error) {
	n, err := s.att.CountByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if s.meetingsPerYear <= 0 {
		return 0, nil
	}
	pct := int(math.Round(100 * float64(n) / float64(s.meetingsPerYear)))
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// ListForMember returns the member's attendance records.
func (s *Service) ListForMember(ctx context.Context, memberID domain.MemberID) ([]domain.AttendanceRecord, error) {
	return s.att.ListByMember(ctx, memberID)
}

// ListForMeeting returns all check-ins recorded for the meeting.
func (s *Service) ListForMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.AttendanceRecord, error) {
	return s.att.ListByMeeting(ctx, meetingID)
}
