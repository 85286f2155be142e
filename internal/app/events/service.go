// Package events manages the volunteer event lifecycle: scheduling,
// capacity-limited role declaration, the event champion, and the paired
// check-in/check-out QR tokens.
package events

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"clubtracker-backend/internal/domain"
	clockport "clubtracker-backend/internal/ports/out/clock"
	"clubtracker-backend/internal/ports/out/eventrepo"
	"clubtracker-backend/internal/ports/out/memberrepo"
	"clubtracker-backend/internal/qrtoken"
)

type Service struct {
	repo    eventrepo.Repository
	members memberrepo.Repository
	clk     clockport.Clock

	newEventID func() domain.EventID
}

func NewService(repo eventrepo.Repository, members memberrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:    repo,
		members: members,
		clk:     clk,
		newEventID: func() domain.EventID {
			return domain.EventID(uuid.NewString())
		},
	}
}

// SetNewEventIDForTest overrides ID generation for deterministic tests.
func (s *Service) SetNewEventIDForTest(fn func() domain.EventID) {
	s.newEventID = fn
}

// Create schedules a volunteer event and issues both hour-tracking tokens.
func (s *Service) Create(ctx context.Context, in CreateEventInput) (domain.VolunteerEvent, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.VolunteerEvent{}, validationErr("name", "must be non-empty")
	}
	if in.Date.IsZero() {
		return domain.VolunteerEvent{}, validationErr("date", "must be set")
	}
	if in.MaxVolunteers < 0 {
		return domain.VolunteerEvent{}, validationErr("maxVolunteers", "must not be negative")
	}
	roles, err := buildRoles(in.Roles)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}
	champion, err := s.resolveChampion(ctx, in.Champion)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}

	id := s.newEventID()
	now := s.clk.Now()
	e := eventrepo.Event{
		VolunteerEvent: domain.VolunteerEvent{
			ID:            id,
			Name:          name,
			Description:   strings.TrimSpace(in.Description),
			Date:          in.Date,
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			Location:      strings.TrimSpace(in.Location),
			MaxVolunteers: in.MaxVolunteers,
			Roles:         roles,
			QRTokenIn:     qrtoken.Encode(qrtoken.TypeVolunteerIn, string(id)),
			QRTokenOut:    qrtoken.Encode(qrtoken.TypeVolunteerOut, string(id)),
			Champion:      champion,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

func (s *Service) Get(ctx context.Context, id domain.EventID) (domain.VolunteerEvent, error) {
	e, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
}

func (s *Service) List(ctx context.Context) ([]domain.VolunteerEvent, error) {
	es, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.VolunteerEvent, 0, len(es))
	for _, e := range es {
		out = append(out, e.VolunteerEvent)
	}
	return out, nil
}

// Update applies a patch to the event's scheduling fields. Roles,
// invitations, and the QR tokens are managed by their own operations.
func (s *Service) Update(ctx context.Context, id domain.EventID, in UpdateEventInput) (domain.VolunteerEvent, error) {
	e, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.VolunteerEvent{}, validationErr("name", "cannot be null")
		}
		name := strings.TrimSpace(in.Name.Value())
		if name == "" {
			return domain.VolunteerEvent{}, validationErr("name", "must be non-empty")
		}
		e.Name = name
	}
	if in.Description.IsSpecified() {
		if in.Description.IsNull() {
			e.Description = ""
		} else {
			e.Description = strings.TrimSpace(in.Description.Value())
		}
	}
	if in.Date.IsSpecified() {
		if in.Date.IsNull() {
			return domain.VolunteerEvent{}, validationErr("date", "cannot be null")
		}
		e.Date = in.Date.Value()
	}
	if in.StartTime.IsSpecified() {
		if in.StartTime.IsNull() {
			e.StartTime = ""
		} else {
			e.StartTime = in.StartTime.Value()
		}
	}
	if in.EndTime.IsSpecified() {
		if in.EndTime.IsNull() {
			e.EndTime = ""
		} else {
			e.EndTime = in.EndTime.Value()
		}
	}
	if in.Location.IsSpecified() {
		if in.Location.IsNull() {
			e.Location = ""
		} else {
			e.Location = strings.TrimSpace(in.Location.Value())
		}
	}
	if in.MaxVolunteers.IsSpecified() {
		if in.MaxVolunteers.IsNull() {
			e.MaxVolunteers = 0
		} else {
			if in.MaxVolunteers.Value() < 0 {
				return domain.VolunteerEvent{}, validationErr("maxVolunteers", "must not be negative")
			}
			e.MaxVolunteers = in.MaxVolunteers.Value()
		}
	}
	if in.Champion.IsSpecified() {
		if in.Champion.IsNull() {
			e.Champion = nil
		} else {
			v := in.Champion.Value()
			champion, err := s.resolveChampion(ctx, &v)
			if err != nil {
				return domain.VolunteerEvent{}, err
			}
			e.Champion = champion
		}
	}
	return s.save(ctx, e)
}

// RotateQR issues fresh check-in and check-out tokens, revoking any
// previously printed codes for this event.
func (s *Service) RotateQR(ctx context.Context, id domain.EventID) (domain.VolunteerEvent, error) {
	e, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.VolunteerEvent{}, err
	}
	e.QRTokenIn = qrtoken.Encode(qrtoken.TypeVolunteerIn, string(e.ID))
	e.QRTokenOut = qrtoken.Encode(qrtoken.TypeVolunteerOut, string(e.ID))
	return s.save(ctx, e)
}

func (s *Service) resolveChampion(ctx context.Context, raw *string) (*domain.MemberID, error) {
	if raw == nil {
		return nil, nil
	}
	id := domain.MemberID(strings.TrimSpace(*raw))
	if id == "" {
		return nil, validationErr("champion", "must be non-empty when set")
	}
	if _, err := s.members.GetByID(ctx, id); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return nil, validationErr("champion", "member not found")
		}
		return nil, err
	}
	return &id, nil
}

func (s *Service) getRecord(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return eventrepo.Event{}, &Error{Status: 404, Code: "EVENT_NOT_FOUND", Message: "event not found"}
		}
		return eventrepo.Event{}, err
	}
	return e, nil
}

func (s *Service) save(ctx context.Context, e eventrepo.Event) (domain.VolunteerEvent, error) {
	e.UpdatedAt = s.clk.Now()
	if err := s.repo.Save(ctx, e); err != nil {
		if errors.Is(err, eventrepo.ErrVersionConflict) {
			return domain.VolunteerEvent{}, &Error{Status: 409, Code: "CONFLICT", Message: "event was modified concurrently; retry"}
		}
		return domain.VolunteerEvent{}, err
	}
	return e.VolunteerEvent, nil
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
