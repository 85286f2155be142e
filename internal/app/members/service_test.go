package members_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memmembers "clubtracker-backend/internal/adapters/memory/memberrepo"
	"clubtracker-backend/internal/app/members"
	"clubtracker-backend/internal/domain"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(t *testing.T) *members.Service {
	t.Helper()
	svc := members.NewService(memmembers.NewRepo(), fixedClock{t: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)})
	svc.SetBcryptCostForTest(bcrypt.MinCost)
	n := 0
	svc.SetNewMemberIDForTest(func() domain.MemberID {
		n++
		return domain.MemberID(fmt.Sprintf("m%d", n))
	})
	return svc
}

func TestRegister_PendingWithNewRole(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	m, err := svc.Register(context.Background(), members.RegisterInput{
		Name:     "  Ada   Lovelace ",
		Email:    "Ada@Example.ORG",
		Password: "correct horse",
		JoinYear: 2025,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.Name != "Ada Lovelace" {
		t.Fatalf("name = %q, want normalized", m.Name)
	}
	if m.Email != "ada@example.org" {
		t.Fatalf("email = %q, want lowercased", m.Email)
	}
	if m.Role != domain.MemberRoleNew {
		t.Fatalf("role = %s, want new", m.Role)
	}
	if m.Status != domain.MemberStatusPending {
		t.Fatalf("status = %s, want pending", m.Status)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	in := members.RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}

	in.Name = "Other Ada"
	_, err := svc.Register(ctx, in)
	var appErr *members.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *members.Error, got %v", err)
	}
	if appErr.Status != 409 || appErr.Code != "EMAIL_ALREADY_IN_USE" {
		t.Fatalf("expected 409 EMAIL_ALREADY_IN_USE, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   members.RegisterInput
	}{
		{"empty name", members.RegisterInput{Email: "a@example.org", Password: "correct horse"}},
		{"bad email", members.RegisterInput{Name: "Ada", Email: "not-an-email", Password: "correct horse"}},
		{"short password", members.RegisterInput{Name: "Ada", Email: "a@example.org", Password: "short"}},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.in)
		var appErr *members.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("%s: expected *members.Error, got %v", tc.name, err)
		}
		if appErr.Code != "VALIDATION_ERROR" {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %s", tc.name, appErr.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, members.RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	m, err := svc.Login(ctx, "ADA@example.org", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if m.Email != "ada@example.org" {
		t.Fatalf("logged-in member = %+v", m)
	}

	for _, tc := range []struct{ email, password string }{
		{"ada@example.org", "wrong password"},
		{"nobody@example.org", "correct horse"},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		var appErr *members.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("login %s: expected *members.Error, got %v", tc.email, err)
		}
		if appErr.Status != 401 || appErr.Code != "INVALID_CREDENTIALS" {
			t.Fatalf("login %s: expected 401 INVALID_CREDENTIALS, got %d %s", tc.email, appErr.Status, appErr.Code)
		}
	}
}

func TestLogin_InactiveMemberRejected(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	m, err := svc.AddMember(ctx, members.AddMemberInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AdminUpdate(ctx, m.ID, members.AdminUpdateInput{Status: members.Some("inactive")}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.Login(ctx, "ada@example.org", "correct horse")
	var appErr *members.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *members.Error, got %v", err)
	}
	if appErr.Status != 403 || appErr.Code != "MEMBER_INACTIVE" {
		t.Fatalf("expected 403 MEMBER_INACTIVE, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestAddMember_ActiveImmediately(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	m, err := svc.AddMember(context.Background(), members.AddMemberInput{
		Name:         "Grace Hopper",
		Email:        "grace@example.org",
		Password:     "correct horse",
		MemberNumber: "A-042",
		JoinYear:     2023,
		Role:         "board",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Status != domain.MemberStatusActive {
		t.Fatalf("status = %s, want active", m.Status)
	}
	if m.Role != domain.MemberRoleBoard {
		t.Fatalf("role = %s, want board", m.Role)
	}
	if m.MemberNumber != "A-042" {
		t.Fatalf("memberNumber = %q", m.MemberNumber)
	}
}

func TestUpdateProfile_Patches(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	phone := "555-0100"
	m, err := svc.AddMember(ctx, members.AddMemberInput{
		Name:     "Ada",
		Email:    "ada@example.org",
		Password: "correct horse",
		Phone:    &phone,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := svc.UpdateProfile(ctx, m.ID, members.UpdateProfileInput{
		Name:  members.Some("Ada Lovelace"),
		Phone: members.Null[string](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Ada Lovelace" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.Phone != nil {
		t.Fatalf("phone = %v, want cleared", *got.Phone)
	}
	// Unspecified fields are untouched.
	if got.Email != "ada@example.org" {
		t.Fatalf("email changed to %q", got.Email)
	}
}

func TestUpdateProfile_NullName(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	m, err := svc.AddMember(ctx, members.AddMemberInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, m.ID, members.UpdateProfileInput{Name: members.Null[string]()})
	var appErr *members.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *members.Error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestAdminUpdate_PromotesAndApproves(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	m, err := svc.Register(ctx, members.RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.AdminUpdate(ctx, m.ID, members.AdminUpdateInput{
		MemberNumber: members.Some("A-007"),
		Role:         members.Some("active"),
		Status:       members.Some("active"),
	})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if got.Role != domain.MemberRoleActive || got.Status != domain.MemberStatusActive {
		t.Fatalf("after approval: role=%s status=%s", got.Role, got.Status)
	}
	if got.MemberNumber != "A-007" {
		t.Fatalf("memberNumber = %q", got.MemberNumber)
	}

	_, err = svc.AdminUpdate(ctx, m.ID, members.AdminUpdateInput{Role: members.Some("emperor")})
	var appErr *members.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *members.Error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.Get(context.Background(), "ghost")
	var appErr *members.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *members.Error, got %v", err)
	}
	if appErr.Status != 404 || appErr.Code != "MEMBER_NOT_FOUND" {
		t.Fatalf("expected 404 MEMBER_NOT_FOUND, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestList_ExcludesInactiveByDefault(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.AddMember(ctx, members.AddMemberInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("add ada: %v", err)
	}
	if _, err := svc.AddMember(ctx, members.AddMemberInput{Name: "Grace", Email: "grace@example.org", Password: "correct horse"}); err != nil {
		t.Fatalf("add grace: %v", err)
	}
	if _, err := svc.AdminUpdate(ctx, a.ID, members.AdminUpdateInput{Status: members.Some("inactive")}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Grace" {
		t.Fatalf("active list = %+v", active)
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 members, got %d", len(all))
	}
}
