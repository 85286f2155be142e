package hoursrepo

import (
	"context"
	"sort"
	"sync"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/hoursrepo"
)

// Repo is an in-memory implementation of hoursrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.HourRecordID]domain.VolunteerHourRecord
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.HourRecordID]domain.VolunteerHourRecord)}
}

func (r *Repo) Create(ctx context.Context, rec domain.VolunteerHourRecord) error {
	_ = ctx
	if rec.ID == "" {
		return hoursrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; ok {
		return hoursrepo.ErrAlreadyExists
	}
	for _, existing := range r.byID {
		if existing.MemberID == rec.MemberID && existing.EventID == rec.EventID && existing.Open() {
			return hoursrepo.ErrOpenRecordExists
		}
	}
	r.byID[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *Repo) GetOpen(ctx context.Context, memberID domain.MemberID, eventID domain.EventID) (domain.VolunteerHourRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.byID {
		if rec.MemberID == memberID && rec.EventID == eventID && rec.Open() {
			return cloneRecord(rec), nil
		}
	}
	return domain.VolunteerHourRecord{}, hoursrepo.ErrNotFound
}

func (r *Repo) Close(ctx context.Context, rec domain.VolunteerHourRecord) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[rec.ID]
	if !ok {
		return hoursrepo.ErrNotFound
	}
	if !existing.Open() {
		return hoursrepo.ErrAlreadyClosed
	}
	r.byID[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *Repo) ListCompletedByMember(ctx context.Context, memberID domain.MemberID) ([]domain.VolunteerHourRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.VolunteerHourRecord, 0)
	for _, rec := range r.byID {
		if rec.MemberID == memberID && !rec.Open() {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *Repo) ListByEvent(ctx context.Context, eventID domain.EventID) ([]domain.VolunteerHourRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.VolunteerHourRecord, 0)
	for _, rec := range r.byID {
		if rec.EventID == eventID {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func cloneRecord(rec domain.VolunteerHourRecord) domain.VolunteerHourRecord {
	cp := rec
	if rec.CheckOutTime != nil {
		v := *rec.CheckOutTime
		cp.CheckOutTime = &v
	}
	return cp
}

func sortRecords(recs []domain.VolunteerHourRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CheckInTime.Equal(recs[j].CheckInTime) {
			return recs[i].CheckInTime.Before(recs[j].CheckInTime)
		}
		return string(recs[i].ID) < string(recs[j].ID)
	})
}
