package memberrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "clubtracker-backend/internal/adapters/postgres"
	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/ports/out/memberrepo"
)

// Repo is a Postgres implementation of memberrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const memberColumns = `
	id, name, email, phone, address, member_number, join_year,
	role, status, password_hash, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(m.ID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO members (
			id, name, email, phone, address, member_number, join_year,
			role, status, password_hash, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		memberUUID,
		m.Name,
		domain.NormalizeEmail(m.Email),
		m.Phone,
		m.Address,
		m.MemberNumber,
		m.JoinYear,
		string(m.Role),
		string(m.Status),
		m.PasswordHash,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "members_email_unique":
				return memberrepo.ErrEmailAlreadyBound
			case "members_pkey":
				return memberrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(m.ID))
	if err != nil {
		return memberrepo.ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE members
		SET name = $2,
		    email = $3,
		    phone = $4,
		    address = $5,
		    member_number = $6,
		    join_year = $7,
		    role = $8,
		    status = $9,
		    password_hash = $10,
		    updated_at = $11
		WHERE id = $1
	`,
		memberUUID,
		m.Name,
		domain.NormalizeEmail(m.Email),
		m.Phone,
		m.Address,
		m.MemberNumber,
		m.JoinYear,
		string(m.Role),
		string(m.Status),
		m.PasswordHash,
		m.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "members_email_unique" {
			return memberrepo.ErrEmailAlreadyBound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return memberrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}
	memberUUID, err := uuid.Parse(string(id))
	if err != nil {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT`+memberColumns+` FROM members WHERE id = $1`, memberUUID)
	return scanMember(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `SELECT`+memberColumns+` FROM members WHERE email = $1`,
		domain.NormalizeEmail(email))
	return scanMember(row)
}

func (r *Repo) List(ctx context.Context, includeInactive bool) ([]memberrepo.Member, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	q := `SELECT` + memberColumns + ` FROM members`
	var args []any
	if !includeInactive {
		q += ` WHERE status <> $1`
		args = append(args, string(domain.MemberStatusInactive))
	}
	q += ` ORDER BY lower(name) ASC, id ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]memberrepo.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Mirror the in-memory sorting rule for determinism across collations.
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}

func scanMember(row interface{ Scan(dest ...any) error }) (memberrepo.Member, error) {
	var (
		id           uuid.UUID
		name         string
		email        string
		phone        *string
		address      *string
		memberNumber string
		joinYear     int
		role         string
		status       string
		passwordHash string
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id,
		&name,
		&email,
		&phone,
		&address,
		&memberNumber,
		&joinYear,
		&role,
		&status,
		&passwordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return memberrepo.Member{}, memberrepo.ErrNotFound
		}
		return memberrepo.Member{}, err
	}
	return memberrepo.Member{
		Member: domain.Member{
			ID:           domain.MemberID(id.String()),
			Name:         name,
			Email:        email,
			Phone:        phone,
			Address:      address,
			MemberNumber: memberNumber,
			JoinYear:     joinYear,
			Role:         domain.MemberRole(role),
			Status:       domain.MemberStatus(status),
		},
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}
