package meetingrepo

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
	"clubtracker-backend/internal/ports/out/meetingrepo"
)

// Repo is a Postgres implementation of meetingrepo.Repository. Roles,
// agenda, and the named role slots are stored as jsonb documents.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// roleDoc is the jsonb shape of a signup role.
type roleDoc struct {
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Volunteers []string `json:"volunteers"`
}

// slotsDoc is the jsonb shape of the named meeting role slots.
type slotsDoc struct {
	President       *string `json:"president"`
	Greeter         *string `json:"greeter"`
	JokeOfTheDay    *string `json:"jokeOfTheDay"`
	ThoughtOfTheDay *string `json:"thoughtOfTheDay"`
}

func (r *Repo) Create(ctx context.Context, m meetingrepo.Meeting) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	meetingUUID, err := uuid.Parse(string(m.ID))
	if err != nil {
		return fmt.Errorf("invalid meeting id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO meetings (
			id, type, title, date, start_time, end_time, location,
			expected_attendance, agenda, qr_token, roles, meeting_roles,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,1,$13,$14)
	`,
		meetingUUID,
		string(m.Type),
		m.Title,
		m.Date.UTC(),
		m.StartTime,
		m.EndTime,
		m.Location,
		m.ExpectedAttendance,
		agendaForDB(m.Agenda),
		m.QRToken,
		rolesToDocs(m.Roles),
		slotsToDoc(m.MeetingRoles),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "meetings_pkey" {
			return meetingrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, m meetingrepo.Meeting) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	meetingUUID, err := uuid.Parse(string(m.ID))
	if err != nil {
		return meetingrepo.ErrNotFound
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE meetings
			SET type = $3,
			    title = $4,
			    date = $5,
			    start_time = $6,
			    end_time = $7,
			    location = $8,
			    expected_attendance = $9,
			    agenda = $10,
			    qr_token = $11,
			    roles = $12,
			    meeting_roles = $13,
			    version = version + 1,
			    updated_at = $14
			WHERE id = $1 AND version = $2
		`,
			meetingUUID,
			m.Version,
			string(m.Type),
			m.Title,
			m.Date.UTC(),
			m.StartTime,
			m.EndTime,
			m.Location,
			m.ExpectedAttendance,
			agendaForDB(m.Agenda),
			m.QRToken,
			rolesToDocs(m.Roles),
			slotsToDoc(m.MeetingRoles),
			m.UpdatedAt.UTC(),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		// Zero rows means either the meeting is gone or the stamp is stale.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT true FROM meetings WHERE id = $1`, meetingUUID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return meetingrepo.ErrNotFound
			}
			return err
		}
		return meetingrepo.ErrVersionConflict
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.MeetingID) (meetingrepo.Meeting, error) {
	if r.pool == nil {
		return meetingrepo.Meeting{}, errors.New("nil postgres pool")
	}
	meetingUUID, err := uuid.Parse(string(id))
	if err != nil {
		return meetingrepo.Meeting{}, meetingrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, type, title, date, start_time, end_time, location,
		       expected_attendance, agenda, qr_token, roles, meeting_roles,
		       version, created_at, updated_at
		FROM meetings
		WHERE id = $1
	`, meetingUUID)
	return scanMeeting(row)
}

func (r *Repo) List(ctx context.Context) ([]meetingrepo.Meeting, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, title, date, start_time, end_time, location,
		       expected_attendance, agenda, qr_token, roles, meeting_roles,
		       version, created_at, updated_at
		FROM meetings
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]meetingrepo.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMeeting(row interface{ Scan(dest ...any) error }) (meetingrepo.Meeting, error) {
	var (
		id        uuid.UUID
		typ       string
		title     string
		date      time.Time
		startTime string
		endTime   string
		location  string
		expected  int
		agenda    []string
		qrToken   string
		roles     []roleDoc
		slots     *slotsDoc
		version   int
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&id,
		&typ,
		&title,
		&date,
		&startTime,
		&endTime,
		&location,
		&expected,
		&agenda,
		&qrToken,
		&roles,
		&slots,
		&version,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meetingrepo.Meeting{}, meetingrepo.ErrNotFound
		}
		return meetingrepo.Meeting{}, err
	}
	return meetingrepo.Meeting{
		Meeting: domain.Meeting{
			ID:                 domain.MeetingID(id.String()),
			Type:               domain.MeetingType(typ),
			Title:              title,
			Date:               date.UTC(),
			StartTime:          startTime,
			EndTime:            endTime,
			Location:           location,
			ExpectedAttendance: expected,
			Agenda:             agenda,
			QRToken:            qrToken,
			Roles:              docsToRoles(roles),
			MeetingRoles:       docToSlots(slots),
		},
		Version:   version,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

// --- jsonb helpers ---

func agendaForDB(agenda []string) []string {
	if agenda == nil {
		return []string{}
	}
	return agenda
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

func slotsToDoc(s *domain.MeetingRoleSlots) *slotsDoc {
	if s == nil {
		return nil
	}
	return &slotsDoc{
		President:       memberIDToString(s.President),
		Greeter:         memberIDToString(s.Greeter),
		JokeOfTheDay:    memberIDToString(s.JokeOfTheDay),
		ThoughtOfTheDay: memberIDToString(s.ThoughtOfTheDay),
	}
}

func docToSlots(d *slotsDoc) *domain.MeetingRoleSlots {
	if d == nil {
		return nil
	}
	return &domain.MeetingRoleSlots{
		President:       stringToMemberID(d.President),
		Greeter:         stringToMemberID(d.Greeter),
		JokeOfTheDay:    stringToMemberID(d.JokeOfTheDay),
		ThoughtOfTheDay: stringToMemberID(d.ThoughtOfTheDay),
	}
}

func memberIDToString(p *domain.MemberID) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}

func stringToMemberID(p *string) *domain.MemberID {
	if p == nil {
		return nil
	}
	v := domain.MemberID(*p)
	return &v
}
