// Package scan routes raw QR payloads to the attendance or volunteer-hours
// engine based on the token type, and assembles the confirmation read model
// the client shows after a scan.
package scan

import (
	"context"
	"errors"

	"clubtracker-backend/internal/app/attendance"
	"clubtracker-backend/internal/app/hours"
	"clubtracker-backend/internal/domain"
	clockport "clubtracker-backend/internal/ports/out/clock"
	"clubtracker-backend/internal/ports/out/eventrepo"
	"clubtracker-backend/internal/ports/out/meetingrepo"
	"clubtracker-backend/internal/qrtoken"
)

type Dispatcher struct {
	meetings   meetingrepo.Repository
	events     eventrepo.Repository
	attendance *attendance.Service
	hours      *hours.Service
	clk        clockport.Clock
}

func NewDispatcher(meetings meetingrepo.Repository, events eventrepo.Repository, att *attendance.Service, hrs *hours.Service, clk clockport.Clock) *Dispatcher {
	return &Dispatcher{meetings: meetings, events: events, attendance: att, hours: hrs, clk: clk}
}

// Result describes what a scan did. Exactly one of Meeting or Event is set,
// matching the token type; the count and totals back the confirmation screen.
type Result struct {
	Kind             qrtoken.Type
	Meeting          *domain.Meeting
	Event            *domain.VolunteerEvent
	Attendance       *domain.AttendanceRecord
	HourRecord       *domain.VolunteerHourRecord
	AlreadyCheckedIn bool
	AttendanceCount  int
	TotalHours       float64
}

// Scan decodes the raw QR payload, verifies it against the entity's current
// token, and dispatches to the matching engine. A stale token decodes fine
// but no longer matches what the entity stores, so it is rejected the same
// way as a malformed one.
func (d *Dispatcher) Scan(ctx context.Context, memberID domain.MemberID, raw string) (Result, error) {
	tok, ok := qrtoken.Decode(raw)
	if !ok {
		return Result{}, errInvalidQR()
	}

	switch tok.Type {
	case qrtoken.TypeMeeting:
		return d.scanMeeting(ctx, memberID, tok, raw)
	case qrtoken.TypeVolunteerIn:
		return d.scanVolunteerIn(ctx, memberID, tok, raw)
	case qrtoken.TypeVolunteerOut:
		return d.scanVolunteerOut(ctx, memberID, tok, raw)
	}
	return Result{}, errInvalidQR()
}

func (d *Dispatcher) scanMeeting(ctx context.Context, memberID domain.MemberID, tok qrtoken.Token, raw string) (Result, error) {
	m, err := d.meetings.GetByID(ctx, domain.MeetingID(tok.EntityID))
	if err != nil {
		if errors.Is(err, meetingrepo.ErrNotFound) {
			return Result{}, errEntityNotFound()
		}
		return Result{}, err
	}
	if m.QRToken != raw {
		return Result{}, errInvalidQR()
	}

	rec, created, err := d.attendance.RecordCheckIn(ctx, memberID, m.ID, d.clk.Now())
	if err != nil {
		return Result{}, err
	}
	count, err := d.attendance.Count(ctx, memberID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:             qrtoken.TypeMeeting,
		Meeting:          &m.Meeting,
		Attendance:       &rec,
		AlreadyCheckedIn: !created,
		AttendanceCount:  count,
	}, nil
}

func (d *Dispatcher) scanVolunteerIn(ctx context.Context, memberID domain.MemberID, tok qrtoken.Token, raw string) (Result, error) {
	e, err := d.getEvent(ctx, tok)
	if err != nil {
		return Result{}, err
	}
	if e.QRTokenIn != raw {
		return Result{}, errInvalidQR()
	}

	rec, err := d.hours.CheckIn(ctx, memberID, e.ID, d.clk.Now())
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:       qrtoken.TypeVolunteerIn,
		Event:      &e.VolunteerEvent,
		HourRecord: &rec,
	}, nil
}

func (d *Dispatcher) scanVolunteerOut(ctx context.Context, memberID domain.MemberID, tok qrtoken.Token, raw string) (Result, error) {
	e, err := d.getEvent(ctx, tok)
	if err != nil {
		return Result{}, err
	}
	if e.QRTokenOut != raw {
		return Result{}, errInvalidQR()
	}

	rec, err := d.hours.CheckOut(ctx, memberID, e.ID, d.clk.Now())
	if err != nil {
		return Result{}, err
	}
	total, err := d.hours.TotalHours(ctx, memberID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:       qrtoken.TypeVolunteerOut,
		Event:      &e.VolunteerEvent,
		HourRecord: &rec,
		TotalHours: total,
	}, nil
}

func (d *Dispatcher) getEvent(ctx context.Context, tok qrtoken.Token) (eventrepo.Event, error) {
	e, err := d.events.GetByID(ctx, domain.EventID(tok.EntityID))
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return eventrepo.Event{}, errEntityNotFound()
		}
		return eventrepo.Event{}, err
	}
	return e, nil
}

func errInvalidQR() *Error {
	return &Error{Status: 422, Code: "INVALID_QR_CODE", Message: "QR code is not recognized or no longer valid"}
}

func errEntityNotFound() *Error {
	return &Error{Status: 404, Code: "ENTITY_NOT_FOUND", Message: "the scanned code does not resolve to a known meeting or event"}
}
