package eventrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/eventrepo"
)

// Repo is an in-memory implementation of eventrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.EventID]eventrepo.Event
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.EventID]eventrepo.Event)}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	if e.ID == "" {
		return eventrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; ok {
		return eventrepo.ErrAlreadyExists
	}
	e.Version = 1
	r.byID[e.ID] = cloneEvent(e)
	return nil
}

func (r *Repo) Save(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[e.ID]
	if !ok {
		return eventrepo.ErrNotFound
	}
	if existing.Version != e.Version {
		return eventrepo.ErrVersionConflict
	}
	e.Version++
	r.byID[e.ID] = cloneEvent(e)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *Repo) List(ctx context.Context) ([]eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]eventrepo.Event, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}

func cloneEvent(e eventrepo.Event) eventrepo.Event {
	cp := e
	cp.Roles = cloneRoles(e.Roles)
	if e.Champion != nil {
		v := *e.Champion
		cp.Champion = &v
	}
	if e.Invitations != nil {
		cp.Invitations = make([]domain.Invitation, len(e.Invitations))
		for i, inv := range e.Invitations {
			cp.Invitations[i] = inv
			cp.Invitations[i].AcceptedAt = cloneTimePtr(inv.AcceptedAt)
		}
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

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
