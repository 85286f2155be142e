package roster_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubtracker-backend/internal/adapters/memory/eventrepo"
	"clubtracker-backend/internal/adapters/memory/meetingrepo"
	"clubtracker-backend/internal/adapters/memory/memberrepo"
	"clubtracker-backend/internal/app/roster"
	"clubtracker-backend/internal/domain"
	eventport "clubtracker-backend/internal/ports/out/eventrepo"
	meetingport "clubtracker-backend/internal/ports/out/meetingrepo"
	memberport "clubtracker-backend/internal/ports/out/memberrepo"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixture struct {
	svc      *roster.Service
	meetings *meetingrepo.Repo
	events   *eventrepo.Repo
	members  *memberrepo.Repo
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	f := &fixture{
		meetings: meetingrepo.NewRepo(),
		events:   eventrepo.NewRepo(),
		members:  memberrepo.NewRepo(),
		now:      now,
	}
	f.svc = roster.NewService(f.meetings, f.events, f.members, fixedClock{t: now})
	return f
}

func (f *fixture) addMember(t *testing.T, id domain.MemberID) {
	t.Helper()
	err := f.members.Create(context.Background(), memberport.Member{
		Member: domain.Member{
			ID:     id,
			Name:   "Member " + string(id),
			Email:  string(id) + "@example.org",
			Role:   domain.MemberRoleActive,
			Status: domain.MemberStatusActive,
		},
	})
	if err != nil {
		t.Fatalf("create member %s: %v", id, err)
	}
}

func (f *fixture) addEvent(t *testing.T, e domain.VolunteerEvent) {
	t.Helper()
	if err := f.events.Create(context.Background(), eventport.Event{VolunteerEvent: e}); err != nil {
		t.Fatalf("create event %s: %v", e.ID, err)
	}
}

func (f *fixture) addMeeting(t *testing.T, m domain.Meeting) {
	t.Helper()
	if err := f.meetings.Create(context.Background(), meetingport.Meeting{Meeting: m}); err != nil {
		t.Fatalf("create meeting %s: %v", m.ID, err)
	}
}

func TestAssignEventRole_FillsUntilCapacity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.addMember(t, "m2")
	f.addMember(t, "m3")
	f.addMember(t, "m4")
	f.addEvent(t, domain.VolunteerEvent{
		ID:            "E1",
		Name:          "Park Cleanup",
		MaxVolunteers: 10,
		Roles: []domain.Role{
			{Name: "Setup", Capacity: 2, Volunteers: []domain.MemberID{"m2"}},
		},
	})

	got, err := f.svc.AssignEventRole(ctx, "E1", "Setup", "m3")
	if err != nil {
		t.Fatalf("assign m3: %v", err)
	}
	if n := len(got.Roles[0].Volunteers); n != 2 {
		t.Fatalf("expected 2 volunteers after m3 joined, got %d", n)
	}

	_, err = f.svc.AssignEventRole(ctx, "E1", "Setup", "m4")
	var appErr *roster.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *roster.Error, got %v", err)
	}
	if appErr.Status != 409 || appErr.Code != "ROLE_FULL" {
		t.Fatalf("expected 409 ROLE_FULL, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestAssignEventRole_IdempotentMembership(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.addMember(t, "m1")
	f.addEvent(t, domain.VolunteerEvent{
		ID:    "E1",
		Name:  "Bake Sale",
		Roles: []domain.Role{{Name: "Cashier", Capacity: 1}},
	})

	if _, err := f.svc.AssignEventRole(ctx, "E1", "Cashier", "m1"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	got, err := f.svc.AssignEventRole(ctx, "E1", "Cashier", "m1")
	if err != nil {
		t.Fatalf("repeat assign: %v", err)
	}
	if n := len(got.Roles[0].Volunteers); n != 1 {
		t.Fatalf("expected single membership after repeat assign, got %d", n)
	}
}

func TestAssignEventRole_UnknownRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.addMember(t, "m1")
	f.addEvent(t, domain.VolunteerEvent{
		ID:    "E1",
		Name:  "Bake Sale",
		Roles: []domain.Role{{Name: "Cashier", Capacity: 1}},
	})

	_, err := f.svc.AssignEventRole(context.Background(), "E1", "Janitor", "m1")
	var appErr *roster.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *roster.Error, got %v", err)
	}
	if appErr.Status != 404 || appErr.Code != "ROLE_NOT_FOUND" {
		t.Fatalf("expected 404 ROLE_NOT_FOUND, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestAssignEventRole_UnknownMember(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.addEvent(t, domain.VolunteerEvent{
		ID:    "E1",
		Roles: []domain.Role{{Name: "Cashier", Capacity: 1}},
	})

	_, err := f.svc.AssignEventRole(context.Background(), "E1", "Cashier", "ghost")
	var appErr *roster.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *roster.Error, got %v", err)
	}
	if appErr.Status != 422 || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestUnassignEventRoles_RemovesEverywhere(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.addEvent(t, domain.VolunteerEvent{
		ID: "E1",
		Roles: []domain.Role{
			{Name: "Setup", Capacity: 3, Volunteers: []domain.MemberID{"m1", "m2"}},
			{Name: "Teardown", Capacity: 3, Volunteers: []domain.MemberID{"m1"}},
		},
	})

	got, err := f.svc.UnassignEventRoles(ctx, "E1", "m1")
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	for _, r := range got.Roles {
		if r.Has("m1") {
			t.Fatalf("m1 still present in role %s", r.Name)
		}
	}
	if !got.Roles[0].Has("m2") {
		t.Fatalf("m2 should remain in Setup")
	}
}

func TestAssignMeetingRole(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.addMember(t, "m1")
	f.addMeeting(t, domain.Meeting{
		ID:    "M1",
		Title: "Weekly Meeting",
		Roles: []domain.Role{{Name: "Greeter", Capacity: 1}},
	})

	got, err := f.svc.AssignMeetingRole(ctx, "M1", "Greeter", "m1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !got.Roles[0].Has("m1") {
		t.Fatalf("m1 not assigned to Greeter")
	}

	_, err = f.svc.AssignMeetingRole(ctx, "missing", "Greeter", "m1")
	var appErr *roster.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *roster.Error, got %v", err)
	}
	if appErr.Code != "MEETING_NOT_FOUND" {
		t.Fatalf("expected MEETING_NOT_FOUND, got %s", appErr.Code)
	}
}

func TestInvitationLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.addMember(t, "m1")
	f.addEvent(t, domain.VolunteerEvent{ID: "E1", Name: "Gala"})

	got, err := f.svc.Invite(ctx, "E1", "m1")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if len(got.Invitations) != 1 {
		t.Fatalf("expected 1 invitation, got %d", len(got.Invitations))
	}
	inv := got.Invitations[0]
	if inv.Status != domain.InvitationPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
	if !inv.InvitedAt.Equal(f.now) {
		t.Fatalf("invitedAt = %v, want %v", inv.InvitedAt, f.now)
	}

	// Repeat invite is a no-op.
	got, err = f.svc.Invite(ctx, "E1", "m1")
	if err != nil {
		t.Fatalf("repeat invite: %v", err)
	}
	if len(got.Invitations) != 1 {
		t.Fatalf("expected 1 invitation after repeat, got %d", len(got.Invitations))
	}

	got, err = f.svc.RespondToInvitation(ctx, "E1", "m1", domain.InvitationAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	inv = got.Invitations[0]
	if inv.Status != domain.InvitationAccepted {
		t.Fatalf("expected accepted, got %s", inv.Status)
	}
	if inv.AcceptedAt == nil || !inv.AcceptedAt.Equal(f.now) {
		t.Fatalf("acceptedAt = %v, want %v", inv.AcceptedAt, f.now)
	}

	got, err = f.svc.CancelInvitation(ctx, "E1", "m1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(got.Invitations) != 0 {
		t.Fatalf("expected no invitations after cancel, got %d", len(got.Invitations))
	}
}

func TestRespondToInvitation_NotInvited(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.addEvent(t, domain.VolunteerEvent{ID: "E1", Name: "Gala"})

	_, err := f.svc.RespondToInvitation(context.Background(), "E1", "m1", domain.InvitationDeclined)
	var appErr *roster.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *roster.Error, got %v", err)
	}
	if appErr.Status != 404 || appErr.Code != "NOT_INVITED" {
		t.Fatalf("expected 404 NOT_INVITED, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestRespondToInvitation_RejectsPending(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.addMember(t, "m1")
	f.addEvent(t, domain.VolunteerEvent{ID: "E1", Name: "Gala"})
	if _, err := f.svc.Invite(context.Background(), "E1", "m1"); err != nil {
		t.Fatalf("invite: %v", err)
	}

	_, err := f.svc.RespondToInvitation(context.Background(), "E1", "m1", domain.InvitationPending)
	var appErr *roster.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *roster.Error, got %v", err)
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestFill(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.addEvent(t, domain.VolunteerEvent{
		ID:            "E1",
		Name:          "Car Wash",
		MaxVolunteers: 8,
		Roles: []domain.Role{
			{Name: "Washer", Capacity: 4, Volunteers: []domain.MemberID{"m1", "m2", "m3"}},
			{Name: "Dryer", Capacity: 4, Volunteers: []domain.MemberID{"m4"}},
		},
	})

	fill, err := f.svc.Fill(context.Background(), "E1")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if fill.TotalSignups != 4 {
		t.Fatalf("totalSignups = %d, want 4", fill.TotalSignups)
	}
	if fill.FillPercentage != 50 {
		t.Fatalf("fillPercentage = %d, want 50", fill.FillPercentage)
	}
	if fill.SpotsRemaining != 4 {
		t.Fatalf("spotsRemaining = %d, want 4", fill.SpotsRemaining)
	}
	if len(fill.Roles) != 2 {
		t.Fatalf("expected 2 role fills, got %d", len(fill.Roles))
	}
	if fill.Roles[0].Signups != 3 || fill.Roles[0].SpotsRemaining != 1 {
		t.Fatalf("washer fill = %+v", fill.Roles[0])
	}
}
