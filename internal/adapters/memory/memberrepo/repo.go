package memberrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/memberrepo"
)

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID      map[domain.MemberID]memberrepo.Member
	idByEmail map[string]domain.MemberID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.MemberID]memberrepo.Member),
		idByEmail: make(map[string]domain.MemberID),
	}
}

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	if m.ID == "" {
		return memberrepo.ErrAlreadyExists
	}
	email := domain.NormalizeEmail(m.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; ok {
		return memberrepo.ErrAlreadyExists
	}
	if _, ok := r.idByEmail[email]; ok {
		return memberrepo.ErrEmailAlreadyBound
	}

	r.byID[m.ID] = cloneMember(m)
	r.idByEmail[email] = m.ID
	return nil
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	email := domain.NormalizeEmail(m.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[m.ID]
	if !ok {
		return memberrepo.ErrNotFound
	}
	oldEmail := domain.NormalizeEmail(existing.Email)
	if email != oldEmail {
		if other, ok := r.idByEmail[email]; ok && other != m.ID {
			return memberrepo.ErrEmailAlreadyBound
		}
		delete(r.idByEmail, oldEmail)
		r.idByEmail[email] = m.ID
	}

	r.byID[m.ID] = cloneMember(m)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return cloneMember(m), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[domain.NormalizeEmail(email)]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return cloneMember(m), nil
}

func (r *Repo) List(ctx context.Context, includeInactive bool) ([]memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberrepo.Member, 0, len(r.byID))
	for _, m := range r.byID {
		if !includeInactive && m.Status == domain.MemberStatusInactive {
			continue
		}
		out = append(out, cloneMember(m))
	}
	sortMembersByName(out)
	return out, nil
}

func cloneMember(m memberrepo.Member) memberrepo.Member {
	out := m
	out.Phone = cloneStringPtr(m.Phone)
	out.Address = cloneStringPtr(m.Address)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortMembersByName(ms []memberrepo.Member) {
	sort.Slice(ms, func(i, j int) bool {
		ni := strings.ToLower(ms[i].Name)
		nj := strings.ToLower(ms[j].Name)
		if ni == nj {
			return string(ms[i].ID) < string(ms[j].ID)
		}
		return ni < nj
	})
}
