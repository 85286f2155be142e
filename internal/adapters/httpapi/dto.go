package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"

	"clubtracker-backend/internal/domain"
)

// Request bodies. PATCH shapes use nullable.Nullable so handlers can tell
// omitted fields from explicit nulls.

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	JoinYear int     `json:"joinYear,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addMemberRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	MemberNumber string  `json:"memberNumber,omitempty"`
	JoinYear     int     `json:"joinYear,omitempty"`
	Role         string  `json:"role,omitempty"`
}

type updateMemberRequest struct {
	Name     nullable.Nullable[string] `json:"name,omitempty"`
	Email    nullable.Nullable[string] `json:"email,omitempty"`
	Phone    nullable.Nullable[string] `json:"phone,omitempty"`
	Address  nullable.Nullable[string] `json:"address,omitempty"`
	Password nullable.Nullable[string] `json:"password,omitempty"`

	// Admin-only fields; ignored on the self-service route.
	MemberNumber nullable.Nullable[string] `json:"memberNumber,omitempty"`
	JoinYear     nullable.Nullable[int]    `json:"joinYear,omitempty"`
	Role         nullable.Nullable[string] `json:"role,omitempty"`
	Status       nullable.Nullable[string] `json:"status,omitempty"`
}

type roleInput struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type createMeetingRequest struct {
	Type               string      `json:"type"`
	Title              string      `json:"title"`
	Date               time.Time   `json:"date"`
	StartTime          string      `json:"startTime,omitempty"`
	EndTime            string      `json:"endTime,omitempty"`
	Location           string      `json:"location,omitempty"`
	ExpectedAttendance int         `json:"expectedAttendance,omitempty"`
	Agenda             []string    `json:"agenda,omitempty"`
	Roles              []roleInput `json:"roles,omitempty"`
}

type updateMeetingRequest struct {
	Type               nullable.Nullable[string]    `json:"type,omitempty"`
	Title              nullable.Nullable[string]    `json:"title,omitempty"`
	Date               nullable.Nullable[time.Time] `json:"date,omitempty"`
	StartTime          nullable.Nullable[string]    `json:"startTime,omitempty"`
	EndTime            nullable.Nullable[string]    `json:"endTime,omitempty"`
	Location           nullable.Nullable[string]    `json:"location,omitempty"`
	ExpectedAttendance nullable.Nullable[int]       `json:"expectedAttendance,omitempty"`
	Agenda             nullable.Nullable[[]string]  `json:"agenda,omitempty"`
}

type slotRequest struct {
	MemberID nullable.Nullable[string] `json:"memberId"`
}

type addGuestRequest struct {
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
}

type createEventRequest struct {
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Date          time.Time   `json:"date"`
	StartTime     string      `json:"startTime,omitempty"`
	EndTime       string      `json:"endTime,omitempty"`
	Location      string      `json:"location,omitempty"`
	MaxVolunteers int         `json:"maxVolunteers,omitempty"`
	Roles         []roleInput `json:"roles,omitempty"`
	Champion      *string     `json:"champion,omitempty"`
}

type updateEventRequest struct {
	Name          nullable.Nullable[string]    `json:"name,omitempty"`
	Description   nullable.Nullable[string]    `json:"description,omitempty"`
	Date          nullable.Nullable[time.Time] `json:"date,omitempty"`
	StartTime     nullable.Nullable[string]    `json:"startTime,omitempty"`
	EndTime       nullable.Nullable[string]    `json:"endTime,omitempty"`
	Location      nullable.Nullable[string]    `json:"location,omitempty"`
	MaxVolunteers nullable.Nullable[int]       `json:"maxVolunteers,omitempty"`
	Champion      nullable.Nullable[string]    `json:"champion,omitempty"`
}

type signupRequest struct {
	// MemberID lets an admin sign up another member; absent means the
	// caller signs up themselves.
	MemberID string `json:"memberId,omitempty"`
}

type inviteRequest struct {
	MemberID string `json:"memberId"`
}

type respondInvitationRequest struct {
	Status string `json:"status"`
}

type scanRequest struct {
	Code string `json:"code"`
}

// Response shapes.

type memberDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	MemberNumber string  `json:"memberNumber,omitempty"`
	JoinYear     int     `json:"joinYear,omitempty"`
	Role         string  `json:"role"`
	Status       string  `json:"status"`
}

type authResponse struct {
	Token  string    `json:"token"`
	Member memberDTO `json:"member"`
}

type roleDTO struct {
	Name           string   `json:"name"`
	Capacity       int      `json:"capacity"`
	Volunteers     []string `json:"volunteers"`
	SpotsRemaining int      `json:"spotsRemaining"`
}

type meetingRoleSlotsDTO struct {
	President       *string `json:"president"`
	Greeter         *string `json:"greeter"`
	JokeOfTheDay    *string `json:"jokeOfTheDay"`
	ThoughtOfTheDay *string `json:"thoughtOfTheDay"`
}

type meetingDTO struct {
	ID                 string               `json:"id"`
	Type               string               `json:"type"`
	Title              string               `json:"title"`
	Date               time.Time            `json:"date"`
	StartTime          string               `json:"startTime,omitempty"`
	EndTime            string               `json:"endTime,omitempty"`
	Location           string               `json:"location,omitempty"`
	ExpectedAttendance int                  `json:"expectedAttendance,omitempty"`
	Agenda             []string             `json:"agenda,omitempty"`
	QRToken            string               `json:"qrToken"`
	Roles              []roleDTO            `json:"roles"`
	MeetingRoles       *meetingRoleSlotsDTO `json:"meetingRoles,omitempty"`
}

type invitationDTO struct {
	MemberID   string     `json:"memberId"`
	Status     string     `json:"status"`
	InvitedAt  time.Time  `json:"invitedAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

type eventDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Date          time.Time       `json:"date"`
	StartTime     string          `json:"startTime,omitempty"`
	EndTime       string          `json:"endTime,omitempty"`
	Location      string          `json:"location,omitempty"`
	MaxVolunteers int             `json:"maxVolunteers"`
	Roles         []roleDTO       `json:"roles"`
	QRTokenIn     string          `json:"qrTokenIn"`
	QRTokenOut    string          `json:"qrTokenOut"`
	Champion      *string         `json:"champion,omitempty"`
	Invitations   []invitationDTO `json:"invitations"`
}

type attendanceRecordDTO struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"memberId"`
	MeetingID   string    `json:"meetingId"`
	CheckInTime time.Time `json:"checkInTime"`
}

type hourRecordDTO struct {
	ID           string     `json:"id"`
	MemberID     string     `json:"memberId"`
	EventID      string     `json:"eventId"`
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	Hours        float64    `json:"hours"`
}

type guestDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Relationship *string   `json:"relationship,omitempty"`
	MeetingID    string    `json:"meetingId"`
	AddedBy      string    `json:"addedBy"`
	CheckInTime  time.Time `json:"checkInTime"`
}

type scanResponse struct {
	Kind             string               `json:"kind"`
	Meeting          *meetingDTO          `json:"meeting,omitempty"`
	Event            *eventDTO            `json:"event,omitempty"`
	Attendance       *attendanceRecordDTO `json:"attendance,omitempty"`
	HourRecord       *hourRecordDTO       `json:"hourRecord,omitempty"`
	AlreadyCheckedIn bool                 `json:"alreadyCheckedIn"`
	AttendanceCount  int                  `json:"attendanceCount,omitempty"`
	TotalHours       float64              `json:"totalHours,omitempty"`
}

type memberStatsResponse struct {
	MemberID             string  `json:"memberId"`
	AttendanceCount      int     `json:"attendanceCount"`
	AttendancePercentage int     `json:"attendancePercentage"`
	TotalHours           float64 `json:"totalHours"`
	EventsParticipated   int     `json:"eventsParticipated"`
}

type roleFillDTO struct {
	Name           string `json:"name"`
	Capacity       int    `json:"capacity"`
	Signups        int    `json:"signups"`
	SpotsRemaining int    `json:"spotsRemaining"`
}

type eventFillResponse struct {
	EventID        string        `json:"eventId"`
	MaxVolunteers  int           `json:"maxVolunteers"`
	TotalSignups   int           `json:"totalSignups"`
	FillPercentage int           `json:"fillPercentage"`
	SpotsRemaining int           `json:"spotsRemaining"`
	Roles          []roleFillDTO `json:"roles"`
}

func memberToDTO(m domain.Member) memberDTO {
	return memberDTO{
		ID:           string(m.ID),
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Address:      m.Address,
		MemberNumber: m.MemberNumber,
		JoinYear:     m.JoinYear,
		Role:         string(m.Role),
		Status:       string(m.Status),
	}
}

func rolesToDTO(roles []domain.Role) []roleDTO {
	out := make([]roleDTO, 0, len(roles))
	for _, r := range roles {
		vols := make([]string, 0, len(r.Volunteers))
		for _, v := range r.Volunteers {
			vols = append(vols, string(v))
		}
		out = append(out, roleDTO{
			Name:           r.Name,
			Capacity:       r.Capacity,
			Volunteers:     vols,
			SpotsRemaining: r.SpotsRemaining(),
		})
	}
	return out
}

func meetingToDTO(m domain.Meeting) meetingDTO {
	dto := meetingDTO{
		ID:                 string(m.ID),
		Type:               string(m.Type),
		Title:              m.Title,
		Date:               m.Date,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		Location:           m.Location,
		ExpectedAttendance: m.ExpectedAttendance,
		Agenda:             m.Agenda,
		QRToken:            m.QRToken,
		Roles:              rolesToDTO(m.Roles),
	}
	if m.MeetingRoles != nil {
		dto.MeetingRoles = &meetingRoleSlotsDTO{
			President:       memberIDPtr(m.MeetingRoles.President),
			Greeter:         memberIDPtr(m.MeetingRoles.Greeter),
			JokeOfTheDay:    memberIDPtr(m.MeetingRoles.JokeOfTheDay),
			ThoughtOfTheDay: memberIDPtr(m.MeetingRoles.ThoughtOfTheDay),
		}
	}
	return dto
}

func eventToDTO(e domain.VolunteerEvent) eventDTO {
	invs := make([]invitationDTO, 0, len(e.Invitations))
	for _, inv := range e.Invitations {
		invs = append(invs, invitationDTO{
			MemberID:   string(inv.MemberID),
			Status:     string(inv.Status),
			InvitedAt:  inv.InvitedAt,
			AcceptedAt: inv.AcceptedAt,
		})
	}
	return eventDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		Description:   e.Description,
		Date:          e.Date,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Location:      e.Location,
		MaxVolunteers: e.MaxVolunteers,
		Roles:         rolesToDTO(e.Roles),
		QRTokenIn:     e.QRTokenIn,
		QRTokenOut:    e.QRTokenOut,
		Champion:      memberIDPtr(e.Champion),
		Invitations:   invs,
	}
}

func attendanceToDTO(rec domain.AttendanceRecord) attendanceRecordDTO {
	return attendanceRecordDTO{
		ID:          string(rec.ID),
		MemberID:    string(rec.MemberID),
		MeetingID:   string(rec.MeetingID),
		CheckInTime: rec.CheckInTime,
	}
}

func hourRecordToDTO(rec domain.VolunteerHourRecord) hourRecordDTO {
	return hourRecordDTO{
		ID:           string(rec.ID),
		MemberID:     string(rec.MemberID),
		EventID:      string(rec.EventID),
		CheckInTime:  rec.CheckInTime,
		CheckOutTime: rec.CheckOutTime,
		Hours:        rec.Hours,
	}
}

func guestToDTO(g domain.Guest) guestDTO {
	return guestDTO{
		ID:           string(g.ID),
		Name:         g.Name,
		Email:        g.Email,
		Phone:        g.Phone,
		Relationship: g.Relationship,
		MeetingID:    string(g.MeetingID),
		AddedBy:      string(g.AddedBy),
		CheckInTime:  g.CheckInTime,
	}
}

func memberIDPtr(id *domain.MemberID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}
