package domain

import "time"

// AttendanceRecord marks a member's check-in at a meeting.
//
// Invariant: at most one record per (member, meeting) pair. Immutable once
// created.
type AttendanceRecord struct {
	ID          AttendanceID
	MemberID    MemberID
	MeetingID   MeetingID
	CheckInTime time.Time
}

// VolunteerHourRecord bounds the interval counted as a member's volunteer
// hours at an event.
//
// Invariant: at most one open record (CheckOutTime == nil) per
// (member, event) at a time; Hours is non-negative once set. Created by
// check-in, mutated exactly once by check-out, immutable thereafter.
type VolunteerHourRecord struct {
	ID       HourRecordID
	MemberID MemberID
	EventID  EventID

	CheckInTime  time.Time
	CheckOutTime *time.Time

	// Hours is the elapsed duration in hours to sub-hour precision; zero
	// until checkout.
	Hours float64
}

// Open reports whether the record is awaiting checkout.
func (r VolunteerHourRecord) Open() bool {
	return r.CheckOutTime == nil
}

// Guest is a visitor a member brought to a meeting they attended.
// Immutable once created.
type Guest struct {
	ID   GuestID
	Name string

	Email        *string
	Phone        *string
	Relationship *string

	MeetingID   MeetingID
	AddedBy     MemberID
	CheckInTime time.Time
}
