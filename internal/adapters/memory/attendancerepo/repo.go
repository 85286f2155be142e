package attendancerepo

import (
	"context"
	"sort"
	"sync"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/attendancerepo"
)

type pairKey struct {
	member  domain.MemberID
	meeting domain.MeetingID
}

// Repo is an in-memory implementation of attendancerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID   map[domain.AttendanceID]domain.AttendanceRecord
	byPair map[pairKey]domain.AttendanceID
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.AttendanceID]domain.AttendanceRecord),
		byPair: make(map[pairKey]domain.AttendanceID),
	}
}

func (r *Repo) Create(ctx context.Context, rec domain.AttendanceRecord) error {
	_ = ctx
	if rec.ID == "" {
		return attendancerepo.ErrAlreadyExists
	}
	key := pairKey{member: rec.MemberID, meeting: rec.MeetingID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; ok {
		return attendancerepo.ErrAlreadyExists
	}
	if _, ok := r.byPair[key]; ok {
		return attendancerepo.ErrAlreadyExists
	}
	r.byID[rec.ID] = rec
	r.byPair[key] = rec.ID
	return nil
}

func (r *Repo) GetByMemberAndMeeting(ctx context.Context, memberID domain.MemberID, meetingID domain.MeetingID) (domain.AttendanceRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey{member: memberID, meeting: meetingID}]
	if !ok {
		return domain.AttendanceRecord{}, attendancerepo.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]domain.AttendanceRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AttendanceRecord, 0)
	for _, rec := range r.byID {
		if rec.MemberID == memberID {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *Repo) ListByMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.AttendanceRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AttendanceRecord, 0)
	for _, rec := range r.byID {
		if rec.MeetingID == meetingID {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *Repo) CountByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rec := range r.byID {
		if rec.MemberID == memberID {
			n++
		}
	}
	return n, nil
}

func sortRecords(recs []domain.AttendanceRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CheckInTime.Equal(recs[j].CheckInTime) {
			return recs[i].CheckInTime.Before(recs[j].CheckInTime)
		}
		return string(recs[i].ID) < string(recs[j].ID)
	})
}
