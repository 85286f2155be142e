package domain

import "time"

// Role is a named, capacity-limited slot within a meeting or volunteer
// event that members sign up for.
//
// Invariant: len(Volunteers) <= Capacity, and a member id appears in
// Volunteers at most once.
type Role struct {
	Name     string
	Capacity int
	// Volunteers is ordered by signup time.
	Volunteers []MemberID
}

// Full reports whether the role has no spots remaining.
func (r Role) Full() bool {
	return len(r.Volunteers) >= r.Capacity
}

// SpotsRemaining returns the number of unfilled spots; never negative.
func (r Role) SpotsRemaining() int {
	n := r.Capacity - len(r.Volunteers)
	if n < 0 {
		return 0
	}
	return n
}

// Has reports whether the member already occupies the role.
func (r Role) Has(id MemberID) bool {
	for _, v := range r.Volunteers {
		if v == id {
			return true
		}
	}
	return false
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is an admin-initiated, per-member request to volunteer at an
// event, distinct from open self-service signup.
//
// Invariant: a member id appears at most once in an event's invitation list.
type Invitation struct {
	MemberID  MemberID
	Status    InvitationStatus
	InvitedAt time.Time
	// AcceptedAt is set when the invitation transitions to accepted.
	AcceptedAt *time.Time
}
