package hours

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/eventrepo"
	"clubtracker-backend/internal/ports/out/hoursrepo"
)

// Service manages the volunteer check-in/check-out lifecycle and the
// derived hour totals.
type Service struct {
	hours  hoursrepo.Repository
	events eventrepo.Repository

	newRecordID func() domain.HourRecordID
}

func NewService(hoursRepo hoursrepo.Repository, events eventrepo.Repository) *Service {
	return &Service{
		hours:  hoursRepo,
		events: events,
		newRecordID: func() domain.HourRecordID {
			return domain.HourRecordID(uuid.NewString())
		},
	}
}

// SetNewRecordIDForTest overrides record ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewRecordIDForTest(fn func() domain.HourRecordID) {
	if fn != nil {
		s.newRecordID = fn
	}
}

// CheckIn opens a new hour record for the member at the event. A second
// check-in while one is still open fails with ALREADY_CHECKED_IN; the
// member must check out first.
func (s *Service) CheckIn(ctx context.Context, memberID domain.MemberID, eventID domain.EventID, at time.Time) (domain.VolunteerHourRecord, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return domain.VolunteerHourRecord{}, &Error{Status: 404, Code: "EVENT_NOT_FOUND", Message: "event not found"}
		}
		return domain.VolunteerHourRecord{}, err
	}

	rec := domain.VolunteerHourRecord{
		ID:          s.newRecordID(),
		MemberID:    memberID,
		EventID:     eventID,
		CheckInTime: at.UTC(),
	}
	if err := s.hours.Create(ctx, rec); err != nil {
		if errors.Is(err, hoursrepo.ErrOpenRecordExists) {
			return domain.VolunteerHourRecord{}, &Error{
				Status:  409,
				Code:    "ALREADY_CHECKED_IN",
				Message: "an open volunteer check-in already exists for this event",
			}
		}
		return domain.VolunteerHourRecord{}, err
	}
	return rec, nil
}

// CheckOut closes the member's open record for the event, computing the
// elapsed duration in hours to sub-hour precision (90 minutes yields 1.5).
func (s *Service) CheckOut(ctx context.Context, memberID domain.MemberID, eventID domain.EventID, at time.Time) (domain.VolunteerHourRecord, error) {
	rec, err := s.hours.GetOpen(ctx, memberID, eventID)
	if err != nil {
		if errors.Is(err, hoursrepo.ErrNotFound) {
			return domain.VolunteerHourRecord{}, &Error{
				Status:  409,
				Code:    "NO_OPEN_CHECKIN",
				Message: "no open volunteer check-in exists for this event",
			}
		}
		return domain.VolunteerHourRecord{}, err
	}

	out := at.UTC()
	worked := out.Sub(rec.CheckInTime).Hours()
	if worked < 0 {
		worked = 0
	}
	rec.CheckOutTime = &out
	rec.Hours = worked

	if err := s.hours.Close(ctx, rec); err != nil {
		if errors.Is(err, hoursrepo.ErrAlreadyClosed) || errors.Is(err, hoursrepo.ErrNotFound) {
			// A concurrent checkout won; from this caller's view there is
			// no open check-in anymore.
			return domain.VolunteerHourRecord{}, &Error{
				Status:  409,
				Code:    "NO_OPEN_CHECKIN",
				Message: "no open volunteer check-in exists for this event",
			}
		}
		return domain.VolunteerHourRecord{}, err
	}
	return rec, nil
}

// TotalHours sums hours across the member's checked-out records. Open
// records contribute nothing.
func (s *Service) TotalHours(ctx context.Context, memberID domain.MemberID) (float64, error) {
	recs, err := s.hours.ListCompletedByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, r := range recs {
		total += r.Hours
	}
	return total, nil
}

// EventsParticipated counts distinct events among the member's checked-out
// records.
func (s *Service) EventsParticipated(ctx context.Context, memberID domain.MemberID) (int, error) {
	recs, err := s.hours.ListCompletedByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	seen := make(map[domain.EventID]bool, len(recs))
	for _, r := range recs {
		seen[r.EventID] = true
	}
	return len(seen), nil
}

// ListCompletedForMember returns the member's checked-out records.
func (s *Service) ListCompletedForMember(ctx context.Context, memberID domain.MemberID) ([]domain.VolunteerHourRecord, error) {
	return s.hours.ListCompletedByMember(ctx, memberID)
}
