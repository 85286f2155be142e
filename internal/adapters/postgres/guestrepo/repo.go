package guestrepo

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
	"clubtracker-backend/internal/ports/out/guestrepo"
)

// Repo is a Postgres implementation of guestrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, g domain.Guest) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	guestUUID, err := uuid.Parse(string(g.ID))
	if err != nil {
		return fmt.Errorf("invalid guest id: %w", err)
	}
	meetingUUID, err := uuid.Parse(string(g.MeetingID))
	if err != nil {
		return fmt.Errorf("invalid meeting id: %w", err)
	}
	addedByUUID, err := uuid.Parse(string(g.AddedBy))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO guests (id, name, email, phone, relationship, meeting_id, added_by, check_in_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		guestUUID,
		g.Name,
		g.Email,
		g.Phone,
		g.Relationship,
		meetingUUID,
		addedByUUID,
		g.CheckInTime.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "guests_pkey" {
			return guestrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.GuestID) (domain.Guest, error) {
	if r.pool == nil {
		return domain.Guest{}, errors.New("nil postgres pool")
	}
	guestUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Guest{}, guestrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, relationship, meeting_id, added_by, check_in_time
		FROM guests
		WHERE id = $1
	`, guestUUID)
	return scanGuest(row)
}

func (r *Repo) ListByMeeting(ctx context.Context, meetingID domain.MeetingID) ([]domain.Guest, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	meetingUUID, err := uuid.Parse(string(meetingID))
	if err != nil {
		return []domain.Guest{}, nil
	}
	return r.list(ctx, `meeting_id`, meetingUUID)
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]domain.Guest, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(memberID))
	if err != nil {
		return []domain.Guest{}, nil
	}
	return r.list(ctx, `added_by`, memberUUID)
}

func (r *Repo) list(ctx context.Context, column string, key uuid.UUID) ([]domain.Guest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, relationship, meeting_id, added_by, check_in_time
		FROM guests
		WHERE `+column+` = $1
		ORDER BY check_in_time ASC, id ASC
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGuest(row interface{ Scan(dest ...any) error }) (domain.Guest, error) {
	var (
		id           uuid.UUID
		name         string
		email        *string
		phone        *string
		relationship *string
		meetingID    uuid.UUID
		addedBy      uuid.UUID
		checkIn      time.Time
	)
	if err := row.Scan(&id, &name, &email, &phone, &relationship, &meetingID, &addedBy, &checkIn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Guest{}, guestrepo.ErrNotFound
		}
		return domain.Guest{}, err
	}
	return domain.Guest{
		ID:           domain.GuestID(id.String()),
		Name:         name,
		Email:        email,
		Phone:        phone,
		Relationship: relationship,
		MeetingID:    domain.MeetingID(meetingID.String()),
		AddedBy:      domain.MemberID(addedBy.String()),
		CheckInTime:  checkIn.UTC(),
	}, nil
}
