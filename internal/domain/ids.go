package domain

// MemberID is an internal identifier for a member record.
type MemberID string

// MeetingID is an internal identifier for a meeting record.
type MeetingID string

// EventID is an internal identifier for a volunteer event record.
type EventID string

// AttendanceID is an internal identifier for an attendance record.
type AttendanceID string

// HourRecordID is an internal identifier for a volunteer hour record.
type HourRecordID string

// GuestID is an internal identifier for a guest record.
type GuestID string
