package members

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// RegisterInput is self-service signup. The new member lands in pending
// status until an admin approves them.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
	Address  *string
	JoinYear int
}

// AddMemberInput is admin-driven creation; the member is active immediately.
type AddMemberInput struct {
	Name         string
	Email        string
	Password     string
	Phone        *string
	Address      *string
	MemberNumber string
	JoinYear     int
	Role         string
}

// UpdateProfileInput is the self-service PATCH shape.
type UpdateProfileInput struct {
	Name     Optional[string]
	Email    Optional[string] // cannot be null
	Phone    Optional[string] // may be null
	Address  Optional[string] // may be null
	Password Optional[string] // cannot be null
}

// AdminUpdateInput extends the profile patch with fields only admins may
// change.
type AdminUpdateInput struct {
	UpdateProfileInput

	MemberNumber Optional[string]
	JoinYear     Optional[int]
	Role         Optional[string]
	Status       Optional[string]
}
