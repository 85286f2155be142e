package scan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memattendance "clubtracker-backend/internal/adapters/memory/attendancerepo"
	memevents "clubtracker-backend/internal/adapters/memory/eventrepo"
	memhours "clubtracker-backend/internal/adapters/memory/hoursrepo"
	memmeetings "clubtracker-backend/internal/adapters/memory/meetingrepo"
	"clubtracker-backend/internal/app/attendance"
	"clubtracker-backend/internal/app/hours"
	"clubtracker-backend/internal/app/scan"
	"clubtracker-backend/internal/domain"
	eventport "clubtracker-backend/internal/ports/out/eventrepo"
	meetingport "clubtracker-backend/internal/ports/out/meetingrepo"
	"clubtracker-backend/internal/qrtoken"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	disp *scan.Dispatcher
	clk  *stepClock
}

func newFixture(t *testing.T) (*fixture, *memmeetings.Repo, *memevents.Repo) {
	t.Helper()
	meetings := memmeetings.NewRepo()
	events := memevents.NewRepo()
	att := attendance.NewService(memattendance.NewRepo(), meetings, 16)
	hrs := hours.NewService(memhours.NewRepo(), events)
	clk := &stepClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		disp: scan.NewDispatcher(meetings, events, att, hrs, clk),
		clk:  clk,
	}, meetings, events
}

func TestScanMeeting_CheckInAndIdempotentRescan(t *testing.T) {
	t.Parallel()
	f, meetings, _ := newFixture(t)
	ctx := context.Background()

	const token = "MEETING:M1:ABC123XYZ"
	err := meetings.Create(ctx, meetingport.Meeting{Meeting: domain.Meeting{
		ID:      "M1",
		Title:   "Weekly Meeting",
		QRToken: token,
	}})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}

	res, err := f.disp.Scan(ctx, "m1", token)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if res.Kind != qrtoken.TypeMeeting {
		t.Fatalf("kind = %s, want %s", res.Kind, qrtoken.TypeMeeting)
	}
	if res.AlreadyCheckedIn {
		t.Fatalf("first scan reported as repeat")
	}
	if res.Attendance == nil || res.Attendance.MemberID != "m1" {
		t.Fatalf("attendance record = %+v", res.Attendance)
	}
	if res.AttendanceCount != 1 {
		t.Fatalf("attendanceCount = %d, want 1", res.AttendanceCount)
	}
	firstCheckIn := res.Attendance.CheckInTime

	f.clk.advance(10 * time.Minute)
	res, err = f.disp.Scan(ctx, "m1", token)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if !res.AlreadyCheckedIn {
		t.Fatalf("rescan not reported as repeat")
	}
	if !res.Attendance.CheckInTime.Equal(firstCheckIn) {
		t.Fatalf("rescan moved checkInTime from %v to %v", firstCheckIn, res.Attendance.CheckInTime)
	}
	if res.AttendanceCount != 1 {
		t.Fatalf("attendanceCount after rescan = %d, want 1", res.AttendanceCount)
	}
}

func TestScanVolunteer_InThenOut(t *testing.T) {
	t.Parallel()
	f, _, events := newFixture(t)
	ctx := context.Background()

	err := events.Create(ctx, eventport.Event{VolunteerEvent: domain.VolunteerEvent{
		ID:         "E1",
		Name:       "Park Cleanup",
		QRTokenIn:  "VOLUNTEER-IN:E1:AAAAAAAAA",
		QRTokenOut: "VOLUNTEER-OUT:E1:BBBBBBBBB",
	}})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	res, err := f.disp.Scan(ctx, "m1", "VOLUNTEER-IN:E1:AAAAAAAAA")
	if err != nil {
		t.Fatalf("check-in scan: %v", err)
	}
	if res.Kind != qrtoken.TypeVolunteerIn {
		t.Fatalf("kind = %s, want %s", res.Kind, qrtoken.TypeVolunteerIn)
	}
	if res.HourRecord == nil || !res.HourRecord.Open() {
		t.Fatalf("expected open hour record, got %+v", res.HourRecord)
	}

	// 09:00 to 12:30 is three and a half hours.
	f.clk.advance(3*time.Hour + 30*time.Minute)
	res, err = f.disp.Scan(ctx, "m1", "VOLUNTEER-OUT:E1:BBBBBBBBB")
	if err != nil {
		t.Fatalf("check-out scan: %v", err)
	}
	if res.Kind != qrtoken.TypeVolunteerOut {
		t.Fatalf("kind = %s, want %s", res.Kind, qrtoken.TypeVolunteerOut)
	}
	if res.HourRecord.Hours != 3.5 {
		t.Fatalf("hours = %v, want 3.5", res.HourRecord.Hours)
	}
	if res.TotalHours != 3.5 {
		t.Fatalf("totalHours = %v, want 3.5", res.TotalHours)
	}
}

func TestScan_DoubleVolunteerCheckIn(t *testing.T) {
	t.Parallel()
	f, _, events := newFixture(t)
	ctx := context.Background()

	err := events.Create(ctx, eventport.Event{VolunteerEvent: domain.VolunteerEvent{
		ID:        "E1",
		QRTokenIn: "VOLUNTEER-IN:E1:AAAAAAAAA",
	}})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := f.disp.Scan(ctx, "m1", "VOLUNTEER-IN:E1:AAAAAAAAA"); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	_, err = f.disp.Scan(ctx, "m1", "VOLUNTEER-IN:E1:AAAAAAAAA")
	var appErr *hours.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *hours.Error, got %v", err)
	}
	if appErr.Status != 409 || appErr.Code != "ALREADY_CHECKED_IN" {
		t.Fatalf("expected 409 ALREADY_CHECKED_IN, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestScan_CheckOutWithoutCheckIn(t *testing.T) {
	t.Parallel()
	f, _, events := newFixture(t)
	ctx := context.Background()

	err := events.Create(ctx, eventport.Event{VolunteerEvent: domain.VolunteerEvent{
		ID:         "E1",
		QRTokenOut: "VOLUNTEER-OUT:E1:BBBBBBBBB",
	}})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	_, err = f.disp.Scan(ctx, "m1", "VOLUNTEER-OUT:E1:BBBBBBBBB")
	var appErr *hours.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *hours.Error, got %v", err)
	}
	if appErr.Status != 409 || appErr.Code != "NO_OPEN_CHECKIN" {
		t.Fatalf("expected 409 NO_OPEN_CHECKIN, got %d %s", appErr.Status, appErr.Code)
	}
}

func TestScan_MalformedPayload(t *testing.T) {
	t.Parallel()
	f, _, _ := newFixture(t)

	for _, raw := range []string{"", "garbage", "MEETING:M1", "BADGE:M1:AAAAAAAAA", "MEETING:M1:A:B"} {
		_, err := f.disp.Scan(context.Background(), "m1", raw)
		var appErr *scan.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("raw %q: expected *scan.Error, got %v", raw, err)
		}
		if appErr.Status != 422 || appErr.Code != "INVALID_QR_CODE" {
			t.Fatalf("raw %q: expected 422 INVALID_QR_CODE, got %d %s", raw, appErr.Status, appErr.Code)
		}
	}
}

func TestScan_StaleTokenRejected(t *testing.T) {
	t.Parallel()
	f, meetings, _ := newFixture(t)
	ctx := context.Background()

	err := meetings.Create(ctx, meetingport.Meeting{Meeting: domain.Meeting{
		ID:      "M1",
		QRToken: "MEETING:M1:NEWTOKEN1",
	}})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}

	// Well-formed, resolves to M1, but the meeting has rotated since.
	_, err = f.disp.Scan(ctx, "m1", "MEETING:M1:OLDTOKEN1")
	var appErr *scan.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *scan.Error, got %v", err)
	}
	if appErr.Code != "INVALID_QR_CODE" {
		t.Fatalf("expected INVALID_QR_CODE, got %s", appErr.Code)
	}
}

func TestScan_UnknownEntity(t *testing.T) {
	t.Parallel()
	f, _, _ := newFixture(t)

	_, err := f.disp.Scan(context.Background(), "m1", "MEETING:ghost:AAAAAAAAA")
	var appErr *scan.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *scan.Error, got %v", err)
	}
	if appErr.Status != 404 || appErr.Code != "ENTITY_NOT_FOUND" {
		t.Fatalf("expected 404 ENTITY_NOT_FOUND, got %d %s", appErr.Status, appErr.Code)
	}
}
