package meetingrepo

import (
	"context"
	"sort"
	"sync"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/meetingrepo"
)

// Repo is an in-memory implementation of meetingrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.MeetingID]meetingrepo.Meeting
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.MeetingID]meetingrepo.Meeting)}
}

func (r *Repo) Create(ctx context.Context, m meetingrepo.Meeting) error {
	_ = ctx
	if m.ID == "" {
		return meetingrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; ok {
		return meetingrepo.ErrAlreadyExists
	}
	m.Version = 1
	r.byID[m.ID] = cloneMeeting(m)
	return nil
}

func (r *Repo) Save(ctx context.Context, m meetingrepo.Meeting) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[m.ID]
	if !ok {
		return meetingrepo.ErrNotFound
	}
	if existing.Version != m.Version {
		return meetingrepo.ErrVersionConflict
	}
	m.Version++
	r.byID[m.ID] = cloneMeeting(m)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MeetingID) (meetingrepo.Meeting, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return meetingrepo.Meeting{}, meetingrepo.ErrNotFound
	}
	return cloneMeeting(m), nil
}

func (r *Repo) List(ctx context.Context) ([]meetingrepo.Meeting, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]meetingrepo.Meeting, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, cloneMeeting(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}

func cloneMeeting(m meetingrepo.Meeting) meetingrepo.Meeting {
	cp := m
	if m.Agenda != nil {
		cp.Agenda = append([]string(nil), m.Agenda...)
	}
	cp.Roles = cloneRoles(m.Roles)
	if m.MeetingRoles != nil {
		slots := domain.MeetingRoleSlots{
			President:       cloneMemberIDPtr(m.MeetingRoles.President),
			Greeter:         cloneMemberIDPtr(m.MeetingRoles.Greeter),
			JokeOfTheDay:    cloneMemberIDPtr(m.MeetingRoles.JokeOfTheDay),
			ThoughtOfTheDay: cloneMemberIDPtr(m.MeetingRoles.ThoughtOfTheDay),
		}
		cp.MeetingRoles = &slots
	}
	return cp
}

func cloneRoles(roles []domain.Role) []domain.Role {
	if roles == nil {
		return nil
	}
	out := make([]domain.Role, len(roles))
	for i, r := range roles {
		cp := r
		if r.Volunteers != nil {
			cp.Volunteers = append([]domain.MemberID(nil), r.Volunteers...)
		}
		out[i] = cp
	}
	return out
}

func cloneMemberIDPtr(p *domain.MemberID) *domain.MemberID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
