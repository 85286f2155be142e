package domain

type MemberRole string

const (
	MemberRolePresident MemberRole = "president"
	MemberRoleSecretary MemberRole = "secretary"
	MemberRoleTreasurer MemberRole = "treasurer"
	MemberRoleBoard     MemberRole = "board"
	MemberRoleActive    MemberRole = "active"
	MemberRoleNew       MemberRole = "new"
)

// IsAdmin reports whether the role carries administrative privileges.
func (r MemberRole) IsAdmin() bool {
	switch r {
	case MemberRolePresident, MemberRoleSecretary, MemberRoleTreasurer, MemberRoleBoard:
		return true
	default:
		return false
	}
}

// Valid reports whether the role is one of the recognized member roles.
func (r MemberRole) Valid() bool {
	switch r {
	case MemberRolePresident, MemberRoleSecretary, MemberRoleTreasurer,
		MemberRoleBoard, MemberRoleActive, MemberRoleNew:
		return true
	default:
		return false
	}
}

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusInactive MemberStatus = "inactive"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusPending, MemberStatusInactive:
		return true
	default:
		return false
	}
}

// Member is the domain representation of a member profile.
// Credentials are not part of the domain model; they live behind the
// authentication boundary.
type Member struct {
	ID MemberID

	Name  string
	Email string
	// Phone and Address are optional contact details; nil means unset.
	Phone   *string
	Address *string

	MemberNumber string
	JoinYear     int
	Role         MemberRole
	Status       MemberStatus
}
