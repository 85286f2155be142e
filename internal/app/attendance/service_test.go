package attendance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memattendance "clubtracker-backend/internal/adapters/memory/attendancerepo"
	memmeetings "clubtracker-backend/internal/adapters/memory/meetingrepo"
	"clubtracker-backend/internal/app/attendance"
	"clubtracker-backend/internal/domain"
	meetingport "clubtracker-backend/internal/ports/out/meetingrepo"
)

func newService(t *testing.T, meetingsPerYear int) (*attendance.Service, *memmeetings.Repo) {
	t.Helper()
	meetings := memmeetings.NewRepo()
	return attendance.NewService(memattendance.NewRepo(), meetings, meetingsPerYear), meetings
}

func addMeeting(t *testing.T, meetings *memmeetings.Repo, id domain.MeetingID) {
	t.Helper()
	err := meetings.Create(context.Background(), meetingport.Meeting{Meeting: domain.Meeting{
		ID:    id,
		Title: "Meeting " + string(id),
		Date:  time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatalf("create meeting %s: %v", id, err)
	}
}

func TestRecordCheckIn_FirstScanCreates(t *testing.T) {
	t.Parallel()
	svc, meetings := newService(t, 16)
	ctx := context.Background()
	addMeeting(t, meetings, "M1")

	at := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	rec, created, err := svc.RecordCheckIn(ctx, "m1", "M1", at)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if !created {
		t.Fatalf("first check-in not reported as created")
	}
	if rec.MemberID != "m1" || rec.MeetingID != "M1" {
		t.Fatalf("record = %+v", rec)
	}
	if !rec.CheckInTime.Equal(at) {
		t.Fatalf("checkInTime = %v, want %v", rec.CheckInTime, at)
	}
}

func TestRecordCheckIn_RepeatKeepsFirstTimestamp(t *testing.T) {
	t.Parallel()
	svc, meetings := newService(t, 16)
	ctx := context.Background()
	addMeeting(t, meetings, "M1")

	first := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	if _, _, err := svc.RecordCheckIn(ctx, "m1", "M1", first); err != nil {
		t.Fatalf("first check-in: %v", err)
	}

	rec, created, err := svc.RecordCheckIn(ctx, "m1", "M1", first.Add(25*time.Minute))
	if err != nil {
		t.Fatalf("repeat check-in: %v", err)
	}
	if created {
		t.Fatalf("repeat check-in reported as created")
	}
	if !rec.CheckInTime.Equal(first) {
		t.Fatalf("repeat moved checkInTime to %v, want %v", rec.CheckInTime, first)
	}

	n, err := svc.Count(ctx, "m1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestRecordCheckIn_UnknownMeeting(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, 16)

	_, _, err := svc.RecordCheckIn(context.Background(), "m1", "ghost", time.Now())
	var appErr *attendance.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *attendance.Error, got %v", err)
	}
	if appErr.Status != 404 || appErr.Code != "MEETING_NOT_FOUND" {
		t.Fatalf("expected 404 MEETING_NOT_FOUND, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestPercentage(t *testing.T) {
	t.Parallel()
	svc, meetings := newService(t, 16)
	ctx := context.Background()

	// 12 of 16 meetings attended is 75 percent.
	for i := 1; i <= 12; i++ {
		id := domain.MeetingID(fmt.Sprintf("M%02d", i))
		addMeeting(t, meetings, id)
		if _, _, err := svc.RecordCheckIn(ctx, "m1", id, time.Now().UTC()); err != nil {
			t.Fatalf("check-in %s: %v", id, err)
		}
	}

	pct, err := svc.Percentage(ctx, "m1")
	if err != nil {
		t.Fatalf("percentage: %v", err)
	}
	if pct != 75 {
		t.Fatalf("percentage = %d, want 75", pct)
	}
}

func TestPercentage_CapsAtHundred(t *testing.T) {
	t.Parallel()
	svc, meetings := newService(t, 2)
	ctx := context.Background()

	for _, id := range []domain.MeetingID{"M1", "M2", "M3"} {
		addMeeting(t, meetings, id)
		if _, _, err := svc.RecordCheckIn(ctx, "m1", id, time.Now().UTC()); err != nil {
			t.Fatalf("check-in %s: %v", id, err)
		}
	}

	pct, err := svc.Percentage(ctx, "m1")
	if err != nil {
		t.Fatalf("percentage: %v", err)
	}
	if pct != 100 {
		t.Fatalf("percentage = %d, want 100", pct)
	}
}

func TestPercentage_NoAttendance(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, 16)

	pct, err := svc.Percentage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("percentage: %v", err)
	}
	if pct != 0 {
		t.Fatalf("percentage = %d, want 0", pct)
	}
}

func TestListForMeeting(t *testing.T) {
	t.Parallel()
	svc, meetings := newService(t, 16)
	ctx := context.Background()
	addMeeting(t, meetings, "M1")
	addMeeting(t, meetings, "M2")

	base := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	for i, m := range []domain.MemberID{"m1", "m2", "m3"} {
		if _, _, err := svc.RecordCheckIn(ctx, m, "M1", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("check-in %s: %v", m, err)
		}
	}
	if _, _, err := svc.RecordCheckIn(ctx, "m1", "M2", base); err != nil {
		t.Fatalf("check-in M2: %v", err)
	}

	recs, err := svc.ListForMeeting(ctx, "M1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records for M1, got %d", len(recs))
	}
	for _, r := range recs {
		if r.MeetingID != "M1" {
			t.Fatalf("record for wrong meeting: %+v", r)
		}
	}
}
