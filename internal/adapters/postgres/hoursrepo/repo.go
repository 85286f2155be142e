package hoursrepo

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
	"clubtracker-backend/internal/ports/out/hoursrepo"
)

// Repo is a Postgres implementation of hoursrepo.Repository. The
// one-open-record invariant is backed by a partial unique index on
// (member_id, event_id) WHERE check_out_time IS NULL.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, rec domain.VolunteerHourRecord) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	recordUUID, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return fmt.Errorf("invalid hour record id: %w", err)
	}
	memberUUID, err := uuid.Parse(string(rec.MemberID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}
	eventUUID, err := uuid.Parse(string(rec.EventID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO hour_records (id, member_id, event_id, check_in_time, check_out_time, hours)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		recordUUID,
		memberUUID,
		eventUUID,
		rec.CheckInTime.UTC(),
		timePtrUTC(rec.CheckOutTime),
		rec.Hours,
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "hour_records_open_unique":
				return hoursrepo.ErrOpenRecordExists
			case "hour_records_pkey":
				return hoursrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) GetOpen(ctx context.Context, memberID domain.MemberID, eventID domain.EventID) (domain.VolunteerHourRecord, error) {
	if r.pool == nil {
		return domain.VolunteerHourRecord{}, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return domain.VolunteerHourRecord{}, hoursrepo.ErrNotFound
	}
	eventUUID, err := uuid.Parse(string(eventID))
	if err != nil {
		return domain.VolunteerHourRecord{}, hoursrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, member_id, event_id, check_in_time, check_out_time, hours
		FROM hour_records
		WHERE member_id = $1 AND event_id = $2 AND check_out_time IS NULL
	`, memberUUID, eventUUID)
	return scanRecord(row)
}

func (r *Repo) Close(ctx context.Context, rec domain.VolunteerHourRecord) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	recordUUID, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return hoursrepo.ErrNotFound
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE hour_records
			SET check_out_time = $2,
			    hours = $3
			WHERE id = $1 AND check_out_time IS NULL
		`, recordUUID, timePtrUTC(rec.CheckOutTime), rec.Hours)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		// Zero rows means the record is gone or a concurrent writer closed it.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT true FROM hour_records WHERE id = $1`, recordUUID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return hoursrepo.ErrNotFound
			}
			return err
		}
		return hoursrepo.ErrAlreadyClosed
	})
}

func (r *Repo) ListCompletedByMember(ctx context.Context, memberID domain.MemberID) ([]domain.VolunteerHourRecord, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return []domain.VolunteerHourRecord{}, nil
	}
	return r.list(ctx, `member_id = $1 AND check_out_time IS NOT NULL`, memberUUID)
}

func (r *Repo) ListByEvent(ctx context.Context, eventID domain.EventID) ([]domain.VolunteerHourRecord, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(eventID))
	if err != nil {
		return []domain.VolunteerHourRecord{}, nil
	}
	return r.list(ctx, `event_id = $1`, eventUUID)
}

func (r *Repo) list(ctx context.Context, where string, key uuid.UUID) ([]domain.VolunteerHourRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, member_id, event_id, check_in_time, check_out_time, hours
		FROM hour_records
		WHERE `+where+`
		ORDER BY check_in_time ASC, id ASC
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.VolunteerHourRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row interface{ Scan(dest ...any) error }) (domain.VolunteerHourRecord, error) {
	var (
		id       uuid.UUID
		memberID uuid.UUID
		eventID  uuid.UUID
		checkIn  time.Time
		checkOut *time.Time
		hours    float64
	)
	if err := row.Scan(&id, &memberID, &eventID, &checkIn, &checkOut, &hours); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VolunteerHourRecord{}, hoursrepo.ErrNotFound
		}
		return domain.VolunteerHourRecord{}, err
	}
	rec := domain.VolunteerHourRecord{
		ID:          domain.HourRecordID(id.String()),
		MemberID:    domain.MemberID(memberID.String()),
		EventID:     domain.EventID(eventID.String()),
		CheckInTime: checkIn.UTC(),
		Hours:       hours,
	}
	if checkOut != nil {
		v := checkOut.UTC()
		rec.CheckOutTime = &v
	}
	return rec, nil
}

func timePtrUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
