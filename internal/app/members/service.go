// Package members manages member profiles and the credential boundary:
// registration, login verification, and profile updates. Password hashes
// never leave the persistence record.
package members

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"clubtracker-backend/internal/domain"
	clockport "clubtracker-backend/internal/ports/out/clock"
	"clubtracker-backend/internal/ports/out/memberrepo"
)

type Service struct {
	repo memberrepo.Repository
	clk  clockport.Clock

	newMemberID func() domain.MemberID
	bcryptCost  int
}

func NewService(repo memberrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newMemberID: func() domain.MemberID {
			return domain.MemberID(uuid.NewString())
		},
		bcryptCost: bcrypt.DefaultCost,
	}
}

// SetNewMemberIDForTest overrides ID generation for deterministic tests.
func (s *Service) SetNewMemberIDForTest(fn func() domain.MemberID) {
	s.newMemberID = fn
}

// SetBcryptCostForTest lowers the hash cost so test suites stay fast.
func (s *Service) SetBcryptCostForTest(cost int) {
	s.bcryptCost = cost
}

// Register creates a self-service signup. The member starts in pending
// status with the "new" role until an admin promotes them.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Member, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Member{}, validationErr("name", "must be non-empty")
	}
	email, err := normalizeAndValidateEmail(in.Email)
	if err != nil {
		return domain.Member{}, validationErr("email", err.Error())
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return domain.Member{}, err
	}

	now := s.clk.Now()
	m := memberrepo.Member{
		Member: domain.Member{
			ID:       s.newMemberID(),
			Name:     name,
			Email:    email,
			Phone:    cloneStringPtr(in.Phone),
			Address:  cloneStringPtr(in.Address),
			JoinYear: in.JoinYear,
			Role:     domain.MemberRoleNew,
			Status:   domain.MemberStatusPending,
		},
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, memberrepo.ErrEmailAlreadyBound) {
			return domain.Member{}, emailInUseErr()
		}
		return domain.Member{}, err
	}
	return m.Member, nil
}

// Login verifies the member's credentials. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Member, error) {
	m, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, invalidCredentialsErr()
		}
		return domain.Member{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return domain.Member{}, invalidCredentialsErr()
	}
	if m.Status == domain.MemberStatusInactive {
		return domain.Member{}, &Error{
			Status:  403,
			Code:    "MEMBER_INACTIVE",
			Message: "this member account has been deactivated",
		}
	}
	return m.Member, nil
}

// AddMember is admin-driven creation; the member is active immediately.
func (s *Service) AddMember(ctx context.Context, in AddMemberInput) (domain.Member, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Member{}, validationErr("name", "must be non-empty")
	}
	email, err := normalizeAndValidateEmail(in.Email)
	if err != nil {
		return domain.Member{}, validationErr("email", err.Error())
	}
	role := domain.MemberRole(in.Role)
	if in.Role == "" {
		role = domain.MemberRoleActive
	}
	if !role.Valid() {
		return domain.Member{}, validationErr("role", "unrecognized member role")
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return domain.Member{}, err
	}

	now := s.clk.Now()
	m := memberrepo.Member{
		Member: domain.Member{
			ID:           s.newMemberID(),
			Name:         name,
			Email:        email,
			Phone:        cloneStringPtr(in.Phone),
			Address:      cloneStringPtr(in.Address),
			MemberNumber: strings.TrimSpace(in.MemberNumber),
			JoinYear:     in.JoinYear,
			Role:         role,
			Status:       domain.MemberStatusActive,
		},
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, memberrepo.ErrEmailAlreadyBound) {
			return domain.Member{}, emailInUseErr()
		}
		return domain.Member{}, err
	}
	return m.Member, nil
}

func (s *Service) Get(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	return m.Member, nil
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]domain.Member, error) {
	ms, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Member)
	}
	return out, nil
}

// UpdateProfile applies a self-service patch to the member's own profile.
func (s *Service) UpdateProfile(ctx context.Context, id domain.MemberID, in UpdateProfileInput) (domain.Member, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	if err := s.applyProfilePatch(&m, in); err != nil {
		return domain.Member{}, err
	}
	return s.save(ctx, m)
}

// AdminUpdate applies a patch that may also change membership fields
// (number, join year, role, status).
func (s *Service) AdminUpdate(ctx context.Context, id domain.MemberID, in AdminUpdateInput) (domain.Member, error) {
	m, err := s.getRecord(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	if err := s.applyProfilePatch(&m, in.UpdateProfileInput); err != nil {
		return domain.Member{}, err
	}

	if in.MemberNumber.IsSpecified() {
		if in.MemberNumber.IsNull() {
			m.MemberNumber = ""
		} else {
			m.MemberNumber = strings.TrimSpace(in.MemberNumber.Value())
		}
	}
	if in.JoinYear.IsSpecified() {
		if in.JoinYear.IsNull() {
			return domain.Member{}, validationErr("joinYear", "cannot be null")
		}
		m.JoinYear = in.JoinYear.Value()
	}
	if in.Role.IsSpecified() {
		if in.Role.IsNull() {
			return domain.Member{}, validationErr("role", "cannot be null")
		}
		role := domain.MemberRole(in.Role.Value())
		if !role.Valid() {
			return domain.Member{}, validationErr("role", "unrecognized member role")
		}
		m.Role = role
	}
	if in.Status.IsSpecified() {
		if in.Status.IsNull() {
			return domain.Member{}, validationErr("status", "cannot be null")
		}
		status := domain.MemberStatus(in.Status.Value())
		if !status.Valid() {
			return domain.Member{}, validationErr("status", "unrecognized member status")
		}
		m.Status = status
	}
	return s.save(ctx, m)
}

func (s *Service) applyProfilePatch(m *memberrepo.Member, in UpdateProfileInput) error {
	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return validationErr("name", "cannot be null")
		}
		name := domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return validationErr("name", "must be non-empty")
		}
		m.Name = name
	}
	if in.Email.IsSpecified() {
		if in.Email.IsNull() {
			return validationErr("email", "cannot be null")
		}
		email, err := normalizeAndValidateEmail(in.Email.Value())
		if err != nil {
			return validationErr("email", err.Error())
		}
		m.Email = email
	}
	if in.Phone.IsSpecified() {
		if in.Phone.IsNull() {
			m.Phone = nil
		} else {
			v := strings.TrimSpace(in.Phone.Value())
			m.Phone = &v
		}
	}
	if in.Address.IsSpecified() {
		if in.Address.IsNull() {
			m.Address = nil
		} else {
			v := strings.TrimSpace(in.Address.Value())
			m.Address = &v
		}
	}
	if in.Password.IsSpecified() {
		if in.Password.IsNull() {
			return validationErr("password", "cannot be null")
		}
		hash, err := s.hashPassword(in.Password.Value())
		if err != nil {
			return err
		}
		m.PasswordHash = hash
	}
	return nil
}

func (s *Service) save(ctx context.Context, m memberrepo.Member) (domain.Member, error) {
	m.UpdatedAt = s.clk.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, memberrepo.ErrEmailAlreadyBound) {
			return domain.Member{}, emailInUseErr()
		}
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, memberNotFoundErr()
		}
		return domain.Member{}, err
	}
	return m.Member, nil
}

func (s *Service) getRecord(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return memberrepo.Member{}, memberNotFoundErr()
		}
		return memberrepo.Member{}, err
	}
	return m, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", validationErr("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeAndValidateEmail(email string) (string, error) {
	e := domain.NormalizeEmail(email)
	if e == "" {
		return "", errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(e)
	if err != nil {
		return "", err
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != e {
		return "", errors.New("must be a bare email address")
	}
	return e, nil
}

func validationErr(field, reason string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: reason},
	}
}

func emailInUseErr() *Error {
	return &Error{Status: 409, Code: "EMAIL_ALREADY_IN_USE", Message: "email address is already in use"}
}

func invalidCredentialsErr() *Error {
	return &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "email or password is incorrect"}
}

func memberNotFoundErr() *Error {
	return &Error{Status: 404, Code: "MEMBER_NOT_FOUND", Message: "member not found"}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
