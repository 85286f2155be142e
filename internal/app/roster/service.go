// Package roster is the capacity and roles engine: it manages role-based
// signups for meetings and volunteer events, the invitation lifecycle, and
// the fill-rate read models.
package roster

import (
	"context"
	"errors"

	"clubtracker-backend/internal/domain"
	clockport "clubtracker-backend/internal/ports/out/clock"
	"clubtracker-backend/internal/ports/out/eventrepo"
	"clubtracker-backend/internal/ports/out/meetingrepo"
	"clubtracker-backend/internal/ports/out/memberrepo"
)

type Service struct {
	meetings meetingrepo.Repository
	events   eventrepo.Repository
	members  memberrepo.Repository
	clk      clockport.Clock
}

func NewService(meetings meetingrepo.Repository, events eventrepo.Repository, members memberrepo.Repository, clk clockport.Clock) *Service {
	return &Service{meetings: meetings, events: events, members: members, clk: clk}
}

// AssignMeetingRole signs the member up for the named role on a meeting.
// Signup is idempotent: assigning a member already in the role returns the
// meeting unchanged.
func (s *Service) AssignMeetingRole(ctx context.Context, meetingID domain.MeetingID, roleName string, memberID domain.MemberID) (domain.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, meetingrepo.ErrNotFound) {
			return domain.Meeting{}, &Error{Status: 404, Code: "MEETING_NOT_FOUND", Message: "meeting not found"}
		}
		return domain.Meeting{}, err
	}
	if err := s.ensureMemberExists(ctx, memberID); err != nil {
		return domain.Meeting{}, err
	}

	changed, err := assignRole(m.Roles, roleName, memberID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if !changed {
		return m.Meeting, nil
	}
	if err := s.saveMeeting(ctx, m); err != nil {
		return domain.Meeting{}, err
	}
	return m.Meeting, nil
}

// UnassignMeetingRoles removes the member from every role on the meeting.
// A member holds at most one role in normal flow; the scrub is defensive.
func (s *Service) UnassignMeetingRoles(ctx context.Context, meetingID domain.MeetingID, memberID domain.MemberID) (domain.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, meetingrepo.ErrNotFound) {
			return domain.Meeting{}, &Error{Status: 404, Code: "MEETING_NOT_FOUND", Message: "meeting not found"}
		}
		return domain.Meeting{}, err
	}

	if !unassignRoles(m.Roles, memberID) {
		return m.Meeting, nil
	}
	if err := s.saveMeeting(ctx, m); err != nil {
		return domain.Meeting{}, err
	}
	return m.Meeting, nil
}

// AssignEventRole signs the member up for the named role on a volunteer
// event. Only per-role capacity hard-blocks; the event-wide maxVolunteers
// limit is surfaced through Fill, not enforced here.
func (s *Service) AssignEventRole(ctx context.Context, eventID domain.EventID, roleName string, memberID domain.MemberID) (domain.VolunteerEvent, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}
	if err := s.ensureMemberExists(ctx, memberID); err != nil {
		return domain.VolunteerEvent{}, err
	}

	changed, err := assignRole(e.Roles, roleName, memberID)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}
	if !changed {
		return e.VolunteerEvent, nil
	}
	if err := s.saveEvent(ctx, e); err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

// UnassignEventRoles removes the member from every role on the event.
func (s *Service) UnassignEventRoles(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (domain.VolunteerEvent, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}

	if !unassignRoles(e.Roles, memberID) {
		return e.VolunteerEvent, nil
	}
	if err := s.saveEvent(ctx, e); err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

// Invite records a pending invitation for the member unless one already
// exists (idempotent).
func (s *Service) Invite(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (domain.VolunteerEvent, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}
	if err := s.ensureMemberExists(ctx, memberID); err != nil {
		return domain.VolunteerEvent{}, err
	}

	if e.InvitationFor(memberID) >= 0 {
		return e.VolunteerEvent, nil
	}
	e.Invitations = append(e.Invitations, domain.Invitation{
		MemberID:  memberID,
		Status:    domain.InvitationPending,
		InvitedAt: s.clk.Now(),
	})
	if err := s.saveEvent(ctx, e); err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

// CancelInvitation removes the member's invitation regardless of status.
func (s *Service) CancelInvitation(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (domain.VolunteerEvent, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}

	idx := e.InvitationFor(memberID)
	if idx < 0 {
		return e.VolunteerEvent, nil
	}
	e.Invitations = append(e.Invitations[:idx], e.Invitations[idx+1:]...)
	if err := s.saveEvent(ctx, e); err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

// RespondToInvitation sets the member's invitation to accepted or declined.
func (s *Service) RespondToInvitation(ctx context.Context, eventID domain.EventID, memberID domain.MemberID, status domain.InvitationStatus) (domain.VolunteerEvent, error) {
	if status != domain.InvitationAccepted && status != domain.InvitationDeclined {
		return domain.VolunteerEvent{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid invitation status",
			Details: map[string]any{"status": "must be accepted or declined"},
		}
	}

	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}

	idx := e.InvitationFor(memberID)
	if idx < 0 {
		return domain.VolunteerEvent{}, &Error{Status: 404, Code: "NOT_INVITED", Message: "no invitation exists for this member"}
	}
	e.Invitations[idx].Status = status
	if status == domain.InvitationAccepted {
		now := s.clk.Now()
		e.Invitations[idx].AcceptedAt = &now
	}
	if err := s.saveEvent(ctx, e); err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

// RoleFill is the per-role portion of the fill-rate read model.
type RoleFill struct {
	Name           string
	Capacity       int
	Signups        int
	SpotsRemaining int
}

// EventFill is the display read model for an event's signup levels.
type EventFill struct {
	EventID       domain.EventID
	MaxVolunteers int
	TotalSignups  int
	// FillPercentage is 100 * TotalSignups / MaxVolunteers; zero when the
	// event has no volunteer limit.
	FillPercentage int
	SpotsRemaining int
	Roles          []RoleFill
}

// Fill computes the event's fill-rate read model.
func (s *Service) Fill(ctx context.Context, eventID domain.EventID) (EventFill, error) {
	e, err := s.getEvent(ctx, eventID)
	if err != nil {
		return EventFill{}, err
	}

	total := e.TotalSignups()
	out := EventFill{
		EventID:       e.ID,
		MaxVolunteers: e.MaxVolunteers,
		TotalSignups:  total,
		SpotsRemaining: e.MaxVolunteers - total,
		Roles:         make([]RoleFill, 0, len(e.Roles)),
	}
	if e.MaxVolunteers > 0 {
		out.FillPercentage = 100 * total / e.MaxVolunteers
	}
	for _, r := range e.Roles {
		out.Roles = append(out.Roles, RoleFill{
			Name:           r.Name,
			Capacity:       r.Capacity,
			Signups:        len(r.Volunteers),
			SpotsRemaining: r.SpotsRemaining(),
		})
	}
	return out, nil
}

func (s *Service) getEvent(ctx context.Context, eventID domain.EventID) (eventrepo.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return eventrepo.Event{}, &Error{Status: 404, Code: "EVENT_NOT_FOUND", Message: "event not found"}
		}
		return eventrepo.Event{}, err
	}
	return e, nil
}

func (s *Service) saveMeeting(ctx context.Context, m meetingrepo.Meeting) error {
	if err := s.meetings.Save(ctx, m); err != nil {
		if errors.Is(err, meetingrepo.ErrVersionConflict) {
			return &Error{Status: 409, Code: "CONFLICT", Message: "meeting was modified concurrently; retry"}
		}
		return err
	}
	return nil
}

func (s *Service) saveEvent(ctx context.Context, e eventrepo.Event) error {
	if err := s.events.Save(ctx, e); err != nil {
		if errors.Is(err, eventrepo.ErrVersionConflict) {
			return &Error{Status: 409, Code: "CONFLICT", Message: "event was modified concurrently; retry"}
		}
		return err
	}
	return nil
}

func (s *Service) ensureMemberExists(ctx context.Context, memberID domain.MemberID) error {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "invalid memberId",
				Details: map[string]any{"memberId": "member not found"},
			}
		}
		return err
	}
	return nil
}

// assignRole appends the member to the named role in place. It reports
// whether the role list changed; idempotent membership means assigning an
// already-present member changes nothing.
func assignRole(roles []domain.Role, roleName string, memberID domain.MemberID) (bool, error) {
	idx := -1
	for i, r := range roles {
		if r.Name == roleName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, &Error{Status: 404, Code: "ROLE_NOT_FOUND", Message: "no such role", Details: map[string]any{"role": roleName}}
	}
	if roles[idx].Has(memberID) {
		return false, nil
	}
	if roles[idx].Full() {
		return false, &Error{Status: 409, Code: "ROLE_FULL", Message: "role is at capacity", Details: map[string]any{"role": roleName}}
	}
	roles[idx].Volunteers = append(roles[idx].Volunteers, memberID)
	return true, nil
}

// unassignRoles removes the member from every role in place, reporting
// whether anything changed.
func unassignRoles(roles []domain.Role, memberID domain.MemberID) bool {
	changed := false
	for i := range roles {
		kept := roles[i].Volunteers[:0]
		for _, v := range roles[i].Volunteers {
			if v == memberID {
				changed = true
				continue
			}
			kept = append(kept, v)
		}
		roles[i].Volunteers = kept
	}
	return changed
}
