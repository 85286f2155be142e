// Package contracttest holds behavioral suites every Repository
// implementation must pass, so the memory and Postgres adapters stay
// interchangeable.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"clubtracker-backend/internal/domain"
	attendancerepoport "clubtracker-backend/internal/ports/out/attendancerepo"
	eventrepoport "clubtracker-backend/internal/ports/out/eventrepo"
	guestrepoport "clubtracker-backend/internal/ports/out/guestrepo"
	hoursrepoport "clubtracker-backend/internal/ports/out/hoursrepo"
	meetingrepoport "clubtracker-backend/internal/ports/out/meetingrepo"
	memberrepoport "clubtracker-backend/internal/ports/out/memberrepo"
)

type CleanupFunc = func()

type MemberRepoFactory func(t *testing.T) (memberrepoport.Repository, CleanupFunc)
type MeetingRepoFactory func(t *testing.T) (meetingrepoport.Repository, CleanupFunc)
type EventRepoFactory func(t *testing.T) (eventrepoport.Repository, CleanupFunc)
type AttendanceRepoFactory func(t *testing.T) (attendancerepoport.Repository, CleanupFunc)
type HoursRepoFactory func(t *testing.T) (hoursrepoport.Repository, CleanupFunc)
type GuestRepoFactory func(t *testing.T) (guestrepoport.Repository, CleanupFunc)

func RunMemberRepo(t *testing.T, newRepo MemberRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.MemberID(uuid.NewString())
	if err := repo.Create(ctx, memberrepoport.Member{
		Member: domain.Member{
			ID:       aID,
			Name:     "Alice Johnson",
			Email:    "alice@example.com",
			JoinYear: 2020,
			Role:     domain.MemberRoleActive,
			Status:   domain.MemberStatusActive,
		},
		PasswordHash: "hash-a",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}

	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Alice Johnson" || got.PasswordHash != "hash-a" {
		t.Fatalf("unexpected member: %+v", got)
	}

	// Email lookup is case-insensitive.
	if _, err := repo.GetByEmail(ctx, "ALICE@Example.COM"); err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	// Email uniqueness.
	err = repo.Create(ctx, memberrepoport.Member{
		Member: domain.Member{
			ID:     domain.MemberID(uuid.NewString()),
			Name:   "Alice 2",
			Email:  "Alice@example.com",
			Role:   domain.MemberRoleNew,
			Status: domain.MemberStatusPending,
		},
		PasswordHash: "hash-a2",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, memberrepoport.ErrEmailAlreadyBound) {
		t.Fatalf("expected ErrEmailAlreadyBound, got %v", err)
	}

	// List orders by name, case-insensitive, and hides inactive members
	// unless asked.
	bID := domain.MemberID(uuid.NewString())
	if err := repo.Create(ctx, memberrepoport.Member{
		Member: domain.Member{
			ID:     bID,
			Name:   "bob",
			Email:  "bob@example.com",
			Role:   domain.MemberRoleActive,
			Status: domain.MemberStatusInactive,
		},
		PasswordHash: "hash-b",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	active, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].ID != aID {
		t.Fatalf("expected only active member, got %+v", active)
	}

	all, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 || all[0].ID != aID || all[1].ID != bID {
		t.Fatalf("unexpected ordering: %+v", all)
	}

	// Update replaces fields and rejects unknown ids.
	upd := got
	upd.Name = "Alice J."
	upd.Status = domain.MemberStatusInactive
	upd.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil || got.Name != "Alice J." || got.Status != domain.MemberStatusInactive {
		t.Fatalf("expected updated member, got %+v err=%v", got, err)
	}

	missing := upd
	missing.ID = domain.MemberID(uuid.NewString())
	missing.Email = "missing@example.com"
	if err := repo.Update(ctx, missing); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func RunMeetingRepo(t *testing.T, newRepo MeetingRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(2000, 0).UTC()
	volunteer := domain.MemberID(uuid.NewString())
	president := domain.MemberID(uuid.NewString())
	mID := domain.MeetingID(uuid.NewString())
	meeting := meetingrepoport.Meeting{
		Meeting: domain.Meeting{
			ID:                 mID,
			Type:               domain.MeetingTypeClub,
			Title:              "Weekly Meeting",
			Date:               now.Add(48 * time.Hour),
			StartTime:          "18:30",
			EndTime:            "20:00",
			Location:           "Club House",
			ExpectedAttendance: 40,
			Agenda:             []string{"welcome", "program"},
			QRToken:            "MEETING:" + string(mID) + ":AAAA11111",
			Roles: []domain.Role{
				{Name: "Greeter", Capacity: 2, Volunteers: []domain.MemberID{volunteer}},
			},
			MeetingRoles: &domain.MeetingRoleSlots{President: &president},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, meeting); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, meeting); !errors.Is(err, meetingrepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, mID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}
	if got.Title != "Weekly Meeting" || len(got.Agenda) != 2 || len(got.Roles) != 1 {
		t.Fatalf("unexpected meeting: %+v", got)
	}
	if !got.Roles[0].Has(volunteer) {
		t.Fatalf("expected volunteer to survive the roundtrip")
	}
	if got.MeetingRoles == nil || got.MeetingRoles.President == nil || *got.MeetingRoles.President != president {
		t.Fatalf("expected president slot to survive the roundtrip: %+v", got.MeetingRoles)
	}

	// Save bumps the version; a stale stamp conflicts.
	stale := got
	got.Title = "Renamed"
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reread, err := repo.GetByID(ctx, mID)
	if err != nil || reread.Version != 2 || reread.Title != "Renamed" {
		t.Fatalf("expected version 2 after save, got %+v err=%v", reread, err)
	}
	if err := repo.Save(ctx, stale); !errors.Is(err, meetingrepoport.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	missing := got
	missing.ID = domain.MeetingID(uuid.NewString())
	if err := repo.Save(ctx, missing); !errors.Is(err, meetingrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// List orders by date.
	earlier := meeting
	earlier.ID = domain.MeetingID(uuid.NewString())
	earlier.Date = now.Add(24 * time.Hour)
	earlier.QRToken = "MEETING:" + string(earlier.ID) + ":BBBB22222"
	if err := repo.Create(ctx, earlier); err != nil {
		t.Fatalf("Create earlier: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != earlier.ID || list[1].ID != mID {
		t.Fatalf("unexpected ordering: %+v", list)
	}
}

func RunEventRepo(t *testing.T, newRepo EventRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(3000, 0).UTC()
	champion := domain.MemberID(uuid.NewString())
	invited := domain.MemberID(uuid.NewString())
	eID := domain.EventID(uuid.NewString())
	event := eventrepoport.Event{
		VolunteerEvent: domain.VolunteerEvent{
			ID:            eID,
			Name:          "Pancake Breakfast",
			Description:   "Annual fundraiser",
			Date:          now.Add(72 * time.Hour),
			StartTime:     "08:00",
			EndTime:       "12:00",
			Location:      "Park Pavilion",
			MaxVolunteers: 8,
			Roles: []domain.Role{
				{Name: "Griddle", Capacity: 3, Volunteers: nil},
			},
			QRTokenIn:  "VOLUNTEER-IN:" + string(eID) + ":CCCC33333",
			QRTokenOut: "VOLUNTEER-OUT:" + string(eID) + ":DDDD44444",
			Champion:   &champion,
			Invitations: []domain.Invitation{
				{MemberID: invited, Status: domain.InvitationPending, InvitedAt: now},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, event); !errors.Is(err, eventrepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, eID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Version != 1 || got.Name != "Pancake Breakfast" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Champion == nil || *got.Champion != champion {
		t.Fatalf("expected champion to survive the roundtrip: %+v", got.Champion)
	}
	if got.InvitationFor(invited) < 0 {
		t.Fatalf("expected invitation to survive the roundtrip: %+v", got.Invitations)
	}
	if got.QRTokenIn != event.QRTokenIn || got.QRTokenOut != event.QRTokenOut {
		t.Fatalf("unexpected tokens: %+v", got)
	}

	// Accepting an invitation survives a save.
	stale := got
	acceptedAt := now.Add(time.Hour)
	got.Invitations[0].Status = domain.InvitationAccepted
	got.Invitations[0].AcceptedAt = &acceptedAt
	got.UpdatedAt = acceptedAt
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reread, err := repo.GetByID(ctx, eID)
	if err != nil || reread.Version != 2 {
		t.Fatalf("expected version 2 after save, got %+v err=%v", reread, err)
	}
	if reread.Invitations[0].Status != domain.InvitationAccepted || reread.Invitations[0].AcceptedAt == nil {
		t.Fatalf("expected accepted invitation, got %+v", reread.Invitations[0])
	}
	if err := repo.Save(ctx, stale); !errors.Is(err, eventrepoport.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	missing := got
	missing.ID = domain.EventID(uuid.NewString())
	if err := repo.Save(ctx, missing); !errors.Is(err, eventrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func RunAttendanceRepo(t *testing.T, newRepo AttendanceRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(4000, 0).UTC()
	member := domain.MemberID(uuid.NewString())
	meeting := domain.MeetingID(uuid.NewString())

	rec := domain.AttendanceRecord{
		ID:          domain.AttendanceID(uuid.NewString()),
		MemberID:    member,
		MeetingID:   meeting,
		CheckInTime: now,
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// One record per (member, meeting).
	dup := rec
	dup.ID = domain.AttendanceID(uuid.NewString())
	dup.CheckInTime = now.Add(time.Minute)
	if err := repo.Create(ctx, dup); !errors.Is(err, attendancerepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByMemberAndMeeting(ctx, member, meeting)
	if err != nil {
		t.Fatalf("GetByMemberAndMeeting: %v", err)
	}
	if got.ID != rec.ID || !got.CheckInTime.Equal(now) {
		t.Fatalf("unexpected record: %+v", got)
	}

	otherMeeting := domain.MeetingID(uuid.NewString())
	if _, err := repo.GetByMemberAndMeeting(ctx, member, otherMeeting); !errors.Is(err, attendancerepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	second := domain.AttendanceRecord{
		ID:          domain.AttendanceID(uuid.NewString()),
		MemberID:    member,
		MeetingID:   otherMeeting,
		CheckInTime: now.Add(-time.Hour),
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	byMember, err := repo.ListByMember(ctx, member)
	if err != nil {
		t.Fatalf("ListByMember: %v", err)
	}
	if len(byMember) != 2 || byMember[0].ID != second.ID {
		t.Fatalf("expected records ordered by check-in time, got %+v", byMember)
	}

	byMeeting, err := repo.ListByMeeting(ctx, meeting)
	if err != nil {
		t.Fatalf("ListByMeeting: %v", err)
	}
	if len(byMeeting) != 1 || byMeeting[0].ID != rec.ID {
		t.Fatalf("unexpected meeting records: %+v", byMeeting)
	}

	n, err := repo.CountByMember(ctx, member)
	if err != nil || n != 2 {
		t.Fatalf("expected count 2, got %d err=%v", n, err)
	}
	n, err = repo.CountByMember(ctx, domain.MemberID(uuid.NewString()))
	if err != nil || n != 0 {
		t.Fatalf("expected count 0, got %d err=%v", n, err)
	}
}

func RunHoursRepo(t *testing.T, newRepo HoursRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(5000, 0).UTC()
	member := domain.MemberID(uuid.NewString())
	event := domain.EventID(uuid.NewString())

	open := domain.VolunteerHourRecord{
		ID:          domain.HourRecordID(uuid.NewString()),
		MemberID:    member,
		EventID:     event,
		CheckInTime: now,
	}
	if err := repo.Create(ctx, open); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Only one open record per (member, event).
	second := open
	second.ID = domain.HourRecordID(uuid.NewString())
	if err := repo.Create(ctx, second); !errors.Is(err, hoursrepoport.ErrOpenRecordExists) {
		t.Fatalf("expected ErrOpenRecordExists, got %v", err)
	}

	got, err := repo.GetOpen(ctx, member, event)
	if err != nil {
		t.Fatalf("GetOpen: %v", err)
	}
	if got.ID != open.ID || !got.Open() {
		t.Fatalf("unexpected open record: %+v", got)
	}

	// Close stamps the checkout and frees the slot.
	out := now.Add(90 * time.Minute)
	got.CheckOutTime = &out
	got.Hours = 1.5
	if err := repo.Close(ctx, got); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := repo.Close(ctx, got); !errors.Is(err, hoursrepoport.ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if _, err := repo.GetOpen(ctx, member, event); !errors.Is(err, hoursrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after close, got %v", err)
	}

	missing := got
	missing.ID = domain.HourRecordID(uuid.NewString())
	if err := repo.Close(ctx, missing); !errors.Is(err, hoursrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// A fresh check-in for the same pair is allowed once the old one closed.
	reopen := domain.VolunteerHourRecord{
		ID:          domain.HourRecordID(uuid.NewString()),
		MemberID:    member,
		EventID:     event,
		CheckInTime: now.Add(2 * time.Hour),
	}
	if err := repo.Create(ctx, reopen); err != nil {
		t.Fatalf("Create reopen: %v", err)
	}

	completed, err := repo.ListCompletedByMember(ctx, member)
	if err != nil {
		t.Fatalf("ListCompletedByMember: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != open.ID || completed[0].Hours != 1.5 {
		t.Fatalf("unexpected completed records: %+v", completed)
	}

	byEvent, err := repo.ListByEvent(ctx, event)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(byEvent) != 2 || byEvent[0].ID != open.ID || byEvent[1].ID != reopen.ID {
		t.Fatalf("expected records ordered by check-in time, got %+v", byEvent)
	}
}

func RunGuestRepo(t *testing.T, newRepo GuestRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(6000, 0).UTC()
	meeting := domain.MeetingID(uuid.NewString())
	host := domain.MemberID(uuid.NewString())

	email := "pat@example.com"
	g := domain.Guest{
		ID:          domain.GuestID(uuid.NewString()),
		Name:        "Pat Visitor",
		Email:       &email,
		MeetingID:   meeting,
		AddedBy:     host,
		CheckInTime: now,
	}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Pat Visitor" || got.Email == nil || *got.Email != email || got.Phone != nil {
		t.Fatalf("unexpected guest: %+v", got)
	}
	if _, err := repo.GetByID(ctx, domain.GuestID(uuid.NewString())); !errors.Is(err, guestrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	earlier := domain.Guest{
		ID:          domain.GuestID(uuid.NewString()),
		Name:        "Early Bird",
		MeetingID:   meeting,
		AddedBy:     domain.MemberID(uuid.NewString()),
		CheckInTime: now.Add(-time.Hour),
	}
	if err := repo.Create(ctx, earlier); err != nil {
		t.Fatalf("Create earlier: %v", err)
	}

	byMeeting, err := repo.ListByMeeting(ctx, meeting)
	if err != nil {
		t.Fatalf("ListByMeeting: %v", err)
	}
	if len(byMeeting) != 2 || byMeeting[0].ID != earlier.ID || byMeeting[1].ID != g.ID {
		t.Fatalf("expected guests ordered by check-in time, got %+v", byMeeting)
	}

	byMember, err := repo.ListByMember(ctx, host)
	if err != nil {
		t.Fatalf("ListByMember: %v", err)
	}
	if len(byMember) != 1 || byMember[0].ID != g.ID {
		t.Fatalf("unexpected guests for member: %+v", byMember)
	}
}
