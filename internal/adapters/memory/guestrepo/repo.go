package guestrepo

import (
	"context"
	"sort"
	"sync"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/guestrepo"
)

// Repo is an in-memory implementation of guestrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.GuestID]domain.Guest
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.GuestID]domain.Guest)}
}

func (r *Repo) Create(ctx context.Context, g domain.Guest) error {
	_ = ctx
	if g.ID == "" {
		return guestrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[g.ID]; ok {
		return guestrepo.ErrAlreadyExists
	}
	r.byID[g.ID] = cloneGuest(g)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.GuestID) (domain.Guest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byID[id]
	if !ok {
		return domain.Guest{}, guestrepo.ErrNotFound
	}
	return cloneGuest(g), nil
}

func (r *Repo) ListByMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.Guest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Guest, 0)
	for _, g := range r.byID {
		if g.MeetingID == meetingID {
			out = append(out, cloneGuest(g))
		}
	}
	sortGuests(out)
	return out, nil
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]domain.Guest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Guest, 0)
	for _, g := range r.byID {
		if g.AddedBy == memberID {
			out = append(out, cloneGuest(g))
		}
	}
	sortGuests(out)
	return out, nil
}

func cloneGuest(g domain.Guest) domain.Guest {
	cp := g
	cp.Email = cloneStringPtr(g.Email)
	cp.Phone = cloneStringPtr(g.Phone)
	cp.Relationship = cloneStringPtr(g.Relationship)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortGuests(gs []domain.Guest) {
	sort.Slice(gs, func(i, j int) bool {
		if !gs[i].CheckInTime.Equal(gs[j].CheckInTime) {
			return gs[i].CheckInTime.Before(gs[j].CheckInTime)
		}
		return string(gs[i].ID) < string(gs[j].ID)
	})
}
