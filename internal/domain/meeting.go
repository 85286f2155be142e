package domain

import "time"

type MeetingType string

const (
	MeetingTypeClub      MeetingType = "club"
	MeetingTypeBoard     MeetingType = "board"
	MeetingTypeCommittee MeetingType = "committee"
	MeetingTypeSocial    MeetingType = "social"
	MeetingTypeSpecial   MeetingType = "special"
)

func (t MeetingType) Valid() bool {
	switch t {
	case MeetingTypeClub, MeetingTypeBoard, MeetingTypeCommittee, MeetingTypeSocial, MeetingTypeSpecial:
		return true
	default:
		return false
	}
}

// MeetingRoleSlots are the named single-assignment positions for a club
// meeting; nil means the slot is unassigned.
type MeetingRoleSlots struct {
	President       *MemberID
	Greeter         *MemberID
	JokeOfTheDay    *MemberID
	ThoughtOfTheDay *MemberID
}

// Meeting is a scheduled club gathering that members check in to by
// scanning its QR token.
type Meeting struct {
	ID MeetingID

	Type  MeetingType
	Title string
	Date  time.Time
	// StartTime/EndTime are local time-of-day strings ("18:30"); the Date
	// field carries the calendar day.
	StartTime string
	EndTime   string
	Location  string

	ExpectedAttendance int
	Agenda             []string

	// QRToken is the currently valid check-in token. Re-issuing it revokes
	// previously printed codes.
	QRToken string

	Roles        []Role
	MeetingRoles *MeetingRoleSlots
}

// RoleByName returns the index of the named role, or -1.
func (m Meeting) RoleByName(name string) int {
	return roleIndex(m.Roles, name)
}

func roleIndex(roles []Role, name string) int {
	for i, r := range roles {
		if r.Name == name {
			return i
		}
	}
	return -1
}
