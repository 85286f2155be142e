package domain

import "time"

// VolunteerEvent is a service event with capacity-limited volunteer roles
// and paired check-in/check-out QR tokens for hour tracking.
type VolunteerEvent struct {
	ID EventID

	Name        string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Location    string

	// MaxVolunteers is a soft overall limit surfaced through fill-rate read
	// models; only per-role capacity hard-blocks signups.
	MaxVolunteers int

	Roles []Role

	QRTokenIn  string
	QRTokenOut string

	// Champion is the member coordinating the event; nil means unassigned.
	Champion *MemberID

	Invitations []Invitation
}

// RoleByName returns the index of the named role, or -1.
func (e VolunteerEvent) RoleByName(name string) int {
	return roleIndex(e.Roles, name)
}

// InvitationFor returns the index of the member's invitation, or -1.
func (e VolunteerEvent) InvitationFor(id MemberID) int {
	for i, inv := range e.Invitations {
		if inv.MemberID == id {
			return i
		}
	}
	return -1
}

// TotalSignups is the sum of signups across all roles.
func (e VolunteerEvent) TotalSignups() int {
	n := 0
	for _, r := range e.Roles {
		n += len(r.Volunteers)
	}
	return n
}
