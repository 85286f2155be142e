package attendancerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "clubtracker-backend/internal/adapters/postgres"
	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/attendancerepo"
)

// Repo is a Postgres implementation of attendancerepo.Repository. The
// at-most-one-check-in invariant is backed by a unique constraint on
// (member_id, meeting_id).
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, rec domain.AttendanceRecord) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	recordUUID, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return fmt.Errorf("invalid attendance record id: %w", err)
	}
	memberUUID, err := uuid.Parse(string(rec.MemberID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}
	meetingUUID, err := uuid.Parse(string(rec.MeetingID))
	if err != nil {
		return fmt.Errorf("invalid meeting id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO attendance_records (id, member_id, meeting_id, check_in_time)
		VALUES ($1, $2, $3, $4)
	`, recordUUID, memberUUID, meetingUUID, rec.CheckInTime.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return attendancerepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByMemberAndMeeting(ctx context.Context, memberID domain.MemberID, meetingID domain.MeetingID) (domain.AttendanceRecord, error) {
	if r.pool == nil {
		return domain.AttendanceRecord{}, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return domain.AttendanceRecord{}, attendancerepo.ErrNotFound
	}
	meetingUUID, err := uuid.Parse(string(meetingID))
	if err != nil {
		return domain.AttendanceRecord{}, attendancerepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, member_id, meeting_id, check_in_time
		FROM attendance_records
		WHERE member_id = $1 AND meeting_id = $2
	`, memberUUID, meetingUUID)
	return scanRecord(row)
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]domain.AttendanceRecord, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return []domain.AttendanceRecord{}, nil
	}
	return r.list(ctx, `member_id`, memberUUID)
}

func (r *Repo) ListByMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.AttendanceRecord, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	meetingUUID, err := uuid.Parse(string(meetingID))
	if err != nil {
		return []domain.AttendanceRecord{}, nil
	}
	return r.list(ctx, `meeting_id`, meetingUUID)
}

func (r *Repo) CountByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return 0, nil
	}
	var n int
	err = r.pool.QueryRow(ctx, `
		SELECT count(*) FROM attendance_records WHERE member_id = $1
	`, memberUUID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) list(ctx context.Context, column string, key uuid.UUID) ([]domain.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, member_id, meeting_id, check_in_time
		FROM attendance_records
		WHERE `+column+` = $1
		ORDER BY check_in_time ASC, id ASC
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row interface{ Scan(dest ...any) error }) (domain.AttendanceRecord, error) {
	var (
		id        uuid.UUID
		memberID  uuid.UUID
		meetingID uuid.UUID
		checkIn   time.Time
	)
	if err := row.Scan(&id, &memberID, &meetingID, &checkIn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AttendanceRecord{}, attendancerepo.ErrNotFound
		}
		return domain.AttendanceRecord{}, err
	}
	return domain.AttendanceRecord{
		ID:          domain.AttendanceID(id.String()),
		MemberID:    domain.MemberID(memberID.String()),
		MeetingID:   domain.MeetingID(meetingID.String()),
		CheckInTime: checkIn.UTC(),
	}, nil
}
