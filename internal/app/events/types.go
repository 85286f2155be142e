package events

import "time"

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

// RoleInput declares a volunteer role and its head count for an event.
type RoleInput struct {
	Name     string
	Capacity int
}

type CreateEventInput struct {
	Name          string
	Description   string
	Date          time.Time
	StartTime     string
	EndTime       string
	Location      string
	MaxVolunteers int
	Roles         []RoleInput
	Champion      *string
}

type UpdateEventInput struct {
	Name          Optional[string]    // cannot be null
	Description   Optional[string]    // null clears
	Date          Optional[time.Time] // cannot be null
	StartTime     Optional[string]
	EndTime       Optional[string]
	Location      Optional[string]
	MaxVolunteers Optional[int]
	Champion      Optional[string] // null clears the champion
}
