// Package meetings manages the meeting lifecycle: scheduling, QR token
// issuance and rotation, the named meeting role slots, and guests brought
// by attending members.
package meetings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/attendancerepo"
	clockport "clubtracker-backend/internal/ports/out/clock"
	"clubtracker-backend/internal/ports/out/guestrepo"
	"clubtracker-backend/internal/ports/out/meetingrepo"
	"clubtracker-backend/internal/ports/out/memberrepo"
	"clubtracker-backend/internal/qrtoken"
)

// Named single-assignment slot identifiers accepted by SetRoleSlot.
const (
	SlotPresident       = "president"
	SlotGreeter         = "greeter"
	SlotJokeOfTheDay    = "jokeOfTheDay"
	SlotThoughtOfTheDay = "thoughtOfTheDay"
)

type Service struct {
	repo       meetingrepo.Repository
	attendance attendancerepo.Repository
	guests     guestrepo.Repository
	members    memberrepo.Repository
	clk        clockport.Clock

	newMeetingID func() domain.MeetingID
	newGuestID   func() domain.GuestID
}

func NewService(repo meetingrepo.Repository, att attendancerepo.Repository, guests guestrepo.Repository, members memberrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:       repo,
		attendance: att,
		guests:     guests,
		members:    members,
		clk:        clk,
		newMeetingID: func() domain.MeetingID {
			return domain.MeetingID(uuid.NewString())
		},
		newGuestID: func() domain.GuestID {
			return domain.GuestID(uuid.NewString())
		},
	}
}

// SetNewMeetingIDForTest overrides ID generation for deterministic tests.
func (s *Service) SetNewMeetingIDForTest(fn func() domain.MeetingID) {
	s.newMeetingID = fn
}

// SetNewGuestIDForTest overrides guest ID generation for deterministic tests.
func (s *Service) SetNewGuestIDForTest(fn func() domain.GuestID) {
	s.newGuestID = fn
}

// Create schedules a meeting and issues its check-in QR token.
func (s *Service) Create(ctx context.Context, in CreateMeetingInput) (domain.Meeting, error) {
	mt := domain.MeetingType(in.Type)
	if !mt.Valid() {
		return domain.Meeting{}, validationErr("type", "unrecognized meeting type")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Meeting{}, validationErr("title", "must be non-empty")
	}
	if in.Date.IsZero() {
		return domain.Meeting{}, validationErr("date", "must be set")
	}
	roles, err := buildRoles(in.Roles)
	if err != nil {
		return domain.Meeting{}, err
	}

	id := s.newMeetingID()
	now := s.clk.Now()
	m := meetingrepo.Meeting{
		Meeting: domain.Meeting{
			ID:                 id,
			Type:               mt,
			Title:              title,
			Date:               in.Date,
			StartTime:          in.StartTime,
			EndTime:            in.EndTime,
			Location:           strings.TrimSpace(in.Location),
			ExpectedAttendance: in.ExpectedAttendance,
			Agenda:             append([]string(nil), in.Agenda...),
			QRToken:            qrtoken.Encode(qrtoken.TypeMeeting, string(id)),
			Roles:              roles,
			MeetingRoles:       &domain.MeetingRoleSlots{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return domain.Meeting{}, err
	}
	return m.Meeting, nil
}

func (s *Service) Get(ctx context.Context, id domain.MeetingID) (domain.Meeting, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Meeting{}, err
	}
	return m.Meeting, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Meeting, error) {
	ms, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Meeting, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Meeting)
	}
	return out, nil
}

// Update applies a patch to the meeting's scheduling fields. Roles and the
// QR token are managed by their own operations.
func (s *Service) Update(ctx context.Context, id domain.MeetingID, in UpdateMeetingInput) (domain.Meeting, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Meeting{}, err
	}

	if in.Type.IsSpecified() {
		if in.Type.IsNull() {
			return domain.Meeting{}, validationErr("type", "cannot be null")
		}
		mt := domain.MeetingType(in.Type.Value())
		if !mt.Valid() {
			return domain.Meeting{}, validationErr("type", "unrecognized meeting type")
		}
		m.Type = mt
	}
	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.Meeting{}, validationErr("title", "cannot be null")
		}
		title := strings.TrimSpace(in.Title.Value())
		if title == "" {
			return domain.Meeting{}, validationErr("title", "must be non-empty")
		}
		m.Title = title
	}
	if in.Date.IsSpecified() {
		if in.Date.IsNull() {
			return domain.Meeting{}, validationErr("date", "cannot be null")
		}
		m.Date = in.Date.Value()
	}
	if in.StartTime.IsSpecified() {
		if in.StartTime.IsNull() {
			m.StartTime = ""
		} else {
			m.StartTime = in.StartTime.Value()
		}
	}
	if in.EndTime.IsSpecified() {
		if in.EndTime.IsNull() {
			m.EndTime = ""
		} else {
			m.EndTime = in.EndTime.Value()
		}
	}
	if in.Location.IsSpecified() {
		if in.Location.IsNull() {
			m.Location = ""
		} else {
			m.Location = strings.TrimSpace(in.Location.Value())
		}
	}
	if in.ExpectedAttendance.IsSpecified() {
		if in.ExpectedAttendance.IsNull() {
			m.ExpectedAttendance = 0
		} else {
			m.ExpectedAttendance = in.ExpectedAttendance.Value()
		}
	}
	if in.Agenda.IsSpecified() {
		if in.Agenda.IsNull() {
			m.Agenda = nil
		} else {
			m.Agenda = append([]string(nil), in.Agenda.Value()...)
		}
	}
	return s.save(ctx, m)
}

// RotateQR issues a fresh check-in token, revoking any previously printed
// codes for this meeting.
func (s *Service) RotateQR(ctx context.Context, id domain.MeetingID) (domain.Meeting, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Meeting{}, err
	}
	m.QRToken = qrtoken.Encode(qrtoken.TypeMeeting, string(m.ID))
	return s.save(ctx, m)
}

// SetRoleSlot assigns or clears one of the named meeting positions. A nil
// member clears the slot.
func (s *Service) SetRoleSlot(ctx context.Context, id domain.MeetingID, slot string, member *domain.MemberID) (domain.Meeting, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Meeting{}, err
	}
	if member != nil {
		if _, err := s.members.GetByID(ctx, *member); err != nil {
			if errors.Is(err, memberrepo.ErrNotFound) {
				return domain.Meeting{}, validationErr("memberId", "member not found")
			}
			return domain.Meeting{}, err
		}
	}

	if m.MeetingRoles == nil {
		m.MeetingRoles = &domain.MeetingRoleSlots{}
	}
	switch slot {
	case SlotPresident:
		m.MeetingRoles.President = member
	case SlotGreeter:
		m.MeetingRoles.Greeter = member
	case SlotJokeOfTheDay:
		m.MeetingRoles.JokeOfTheDay = member
	case SlotThoughtOfTheDay:
		m.MeetingRoles.ThoughtOfTheDay = member
	default:
		return domain.Meeting{}, validationErr("slot", "unrecognized meeting role slot")
	}
	return s.save(ctx, m)
}

// AddGuest records a visitor brought by an attending member. The member
// must already be checked in to the meeting.
func (s *Service) AddGuest(ctx context.Context, caller domain.MemberID, meetingID domain.MeetingID, in GuestInput) (domain.Guest, error) {
	if _, err := s.getRecord(ctx, meetingID); err != nil {
		return domain.Guest{}, err
	}
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Guest{}, validationErr("name", "must be non-empty")
	}

	if _, err := s.attendance.GetByMemberAndMeeting(ctx, caller, meetingID); err != nil {
		if errors.Is(err, attendancerepo.ErrNotFound) {
			return domain.Guest{}, &Error{
				Status:  409,
				Code:    "NOT_CHECKED_IN",
				Message: "check in to the meeting before adding a guest",
			}
		}
		return domain.Guest{}, err
	}

	g := domain.Guest{
		ID:           s.newGuestID(),
		Name:         name,
		Email:        cloneStringPtr(in.Email),
		Phone:        cloneStringPtr(in.Phone),
		Relationship: cloneStringPtr(in.Relationship),
		MeetingID:    meetingID,
		AddedBy:      caller,
		CheckInTime:  s.clk.Now(),
	}
	if err := s.guests.Create(ctx, g); err != nil {
		return domain.Guest{}, err
	}
	return g, nil
}

func (s *Service) ListGuests(ctx context.Context, meetingID domain.MeetingID) ([]domain.Guest, error) {
	if _, err := s.getRecord(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.guests.ListByMeeting(ctx, meetingID)
}

func (s *Service) getRecord(ctx context.Context, id domain.MeetingID) (meetingrepo.Meeting, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, meetingrepo.ErrNotFound) {
			return meetingrepo.Meeting{}, &Error{Status: 404, Code: "MEETING_NOT_FOUND", Message: "meeting not found"}
		}
		return meetingrepo.Meeting{}, err
	}
	return m, nil
}

func (s *Service) save(ctx context.Context, m meetingrepo.Meeting) (domain.Meeting, error) {
	m.UpdatedAt = s.clk.Now()
	if err := s.repo.Save(ctx, m); err != nil {
		if errors.Is(err, meetingrepo.ErrVersionConflict) {
			return domain.Meeting{}, &Error{Status: 409, Code: "CONFLICT", Message: "meeting was modified concurrently; retry"}
		}
		return domain.Meeting{}, err
	}
	return m.Meeting, nil
}

func buildRoles(in []RoleInput) ([]domain.Role, error) {
	if len(in) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Role, 0, len(in))
	for _, r := range in {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, validationErr("roles", "role name must be non-empty")
		}
		if _, dup := seen[name]; dup {
			return nil, validationErr("roles", "duplicate role name: "+name)
		}
		if r.Capacity < 1 {
			return nil, validationErr("roles", "role capacity must be at least 1")
		}
		seen[name] = struct{}{}
		out = append(out, domain.Role{Name: name, Capacity: r.Capacity})
	}
	return out, nil
}

func validationErr(field, reason string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: reason},
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
