package eventrepo

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
	"clubtracker-backend/internal/ports/out/eventrepo"
)

// Repo is a Postgres implementation of eventrepo.Repository. Roles and
// invitations are stored as jsonb documents.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type roleDoc struct {
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Volunteers []string `json:"volunteers"`
}

type invitationDoc struct {
	MemberID   string     `json:"memberId"`
	Status     string     `json:"status"`
	InvitedAt  time.Time  `json:"invitedAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	champion, err := championForDB(e.Champion)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO events (
			id, name, description, date, start_time, end_time, location,
			max_volunteers, roles, qr_token_in, qr_token_out, champion_id,
			invitations, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,1,$14,$15)
	`,
		eventUUID,
		e.Name,
		e.Description,
		e.Date.UTC(),
		e.StartTime,
		e.EndTime,
		e.Location,
		e.MaxVolunteers,
		rolesToDocs(e.Roles),
		e.QRTokenIn,
		e.QRTokenOut,
		champion,
		invitationsToDocs(e.Invitations),
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "events_pkey" {
			return eventrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(e.ID))
	if err != nil {
		return eventrepo.ErrNotFound
	}
	champion, err := championForDB(e.Champion)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE events
			SET name = $3,
			    description = $4,
			    date = $5,
			    start_time = $6,
			    end_time = $7,
			    location = $8,
			    max_volunteers = $9,
			    roles = $10,
			    qr_token_in = $11,
			    qr_token_out = $12,
			    champion_id = $13,
			    invitations = $14,
			    version = version + 1,
			    updated_at = $15
			WHERE id = $1 AND version = $2
		`,
			eventUUID,
			e.Version,
			e.Name,
			e.Description,
			e.Date.UTC(),
			e.StartTime,
			e.EndTime,
			e.Location,
			e.MaxVolunteers,
			rolesToDocs(e.Roles),
			e.QRTokenIn,
			e.QRTokenOut,
			champion,
			invitationsToDocs(e.Invitations),
			e.UpdatedAt.UTC(),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT true FROM events WHERE id = $1`, eventUUID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return eventrepo.ErrNotFound
			}
			return err
		}
		return eventrepo.ErrVersionConflict
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	if r.pool == nil {
		return eventrepo.Event{}, errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(id))
	if err != nil {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, date, start_time, end_time, location,
		       max_volunteers, roles, qr_token_in, qr_token_out, champion_id,
		       invitations, version, created_at, updated_at
		FROM events
		WHERE id = $1
	`, eventUUID)
	return scanEvent(row)
}

func (r *Repo) List(ctx context.Context) ([]eventrepo.Event, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, date, start_time, end_time, location,
		       max_volunteers, roles, qr_token_in, qr_token_out, champion_id,
		       invitations, version, created_at, updated_at
		FROM events
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventrepo.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(row interface{ Scan(dest ...any) error }) (eventrepo.Event, error) {
	var (
		id          uuid.UUID
		name        string
		description string
		date        time.Time
		startTime   string
		endTime     string
		location    string
		maxVols     int
		roles       []roleDoc
		qrIn        string
		qrOut       string
		champion    *uuid.UUID
		invitations []invitationDoc
		version     int
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(
		&id,
		&name,
		&description,
		&date,
		&startTime,
		&endTime,
		&location,
		&maxVols,
		&roles,
		&qrIn,
		&qrOut,
		&champion,
		&invitations,
		&version,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eventrepo.Event{}, eventrepo.ErrNotFound
		}
		return eventrepo.Event{}, err
	}

	var championID *domain.MemberID
	if champion != nil {
		v := domain.MemberID(champion.String())
		championID = &v
	}
	return eventrepo.Event{
		VolunteerEvent: domain.VolunteerEvent{
			ID:            domain.EventID(id.String()),
			Name:          name,
			Description:   description,
			Date:          date.UTC(),
			StartTime:     startTime,
			EndTime:       endTime,
			Location:      location,
			MaxVolunteers: maxVols,
			Roles:         docsToRoles(roles),
			QRTokenIn:     qrIn,
			QRTokenOut:    qrOut,
			Champion:      championID,
			Invitations:   docsToInvitations(invitations),
		},
		Version:   version,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

// --- jsonb helpers ---

func championForDB(id *domain.MemberID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	u, err := uuid.Parse(string(*id))
	if err != nil {
		return nil, fmt.Errorf("invalid champion member id: %w", err)
	}
	return &u, nil
}

func rolesToDocs(roles []domain.Role) []roleDoc {
	out := make([]roleDoc, 0, len(roles))
	for _, r := range roles {
		vols := make([]string, 0, len(r.Volunteers))
		for _, v := range r.Volunteers {
			vols = append(vols, string(v))
		}
		out = append(out, roleDoc{Name: r.Name, Capacity: r.Capacity, Volunteers: vols})
	}
	return out
}

func docsToRoles(docs []roleDoc) []domain.Role {
	if docs == nil {
		return nil
	}
	out := make([]domain.Role, 0, len(docs))
	for _, d := range docs {
		vols := make([]domain.MemberID, 0, len(d.Volunteers))
		for _, v := range d.Volunteers {
			vols = append(vols, domain.MemberID(v))
		}
		out = append(out, domain.Role{Name: d.Name, Capacity: d.Capacity, Volunteers: vols})
	}
	return out
}

func invitationsToDocs(invs []domain.Invitation) []invitationDoc {
	out := make([]invitationDoc, 0, len(invs))
	for _, inv := range invs {
		doc := invitationDoc{
			MemberID:  string(inv.MemberID),
			Status:    string(inv.Status),
			InvitedAt: inv.InvitedAt.UTC(),
		}
		if inv.AcceptedAt != nil {
			v := inv.AcceptedAt.UTC()
			doc.AcceptedAt = &v
		}
		out = append(out, doc)
	}
	return out
}

func docsToInvitations(docs []invitationDoc) []domain.Invitation {
	if len(docs) == 0 {
		return nil
	}
	out := make([]domain.Invitation, 0, len(docs))
	for _, d := range docs {
		inv := domain.Invitation{
			MemberID:  domain.MemberID(d.MemberID),
			Status:    domain.InvitationStatus(d.Status),
			InvitedAt: d.InvitedAt.UTC(),
		}
		if d.AcceptedAt != nil {
			v := d.AcceptedAt.UTC()
			inv.AcceptedAt = &v
		}
		out = append(out, inv)
	}
	return out
}
