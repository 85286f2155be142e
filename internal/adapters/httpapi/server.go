package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"

	"clubtracker-backend/internal/app/attendance"
	"clubtracker-backend/internal/app/events"
	"clubtracker-backend/internal/app/hours"
	"clubtracker-backend/internal/app/meetings"
	"clubtracker-backend/internal/app/members"
	"clubtracker-backend/internal/app/roster"
	"clubtracker-backend/internal/app/scan"
	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/platform/auth"
)

// Server is the HTTP adapter: it decodes requests, delegates to the app
// services, and maps their results onto the wire DTOs.
type Server struct {
	Members    *members.Service
	Meetings   *meetings.Service
	Events     *events.Service
	Attendance *attendance.Service
	Hours      *hours.Service
	Roster     *roster.Service
	Scanner    *scan.Dispatcher
	Tokens     *auth.Tokens
}

func NewServer(
	membersSvc *members.Service,
	meetingsSvc *meetings.Service,
	eventsSvc *events.Service,
	attendanceSvc *attendance.Service,
	hoursSvc *hours.Service,
	rosterSvc *roster.Service,
	scanner *scan.Dispatcher,
	tokens *auth.Tokens,
) *Server {
	return &Server{
		Members:    membersSvc,
		Meetings:   meetingsSvc,
		Events:     eventsSvc,
		Attendance: attendanceSvc,
		Hours:      hoursSvc,
		Roster:     rosterSvc,
		Scanner:    scanner,
		Tokens:     tokens,
	}
}

// Auth

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.Members.Register(r.Context(), members.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		JoinYear: req.JoinYear,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeAuthResponse(w, r, http.StatusCreated, m)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.Members.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.writeAuthResponse(w, r, http.StatusOK, m)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, r *http.Request, status int, m domain.Member) {
	token, err := s.Tokens.Issue(m.ID, m.Role.IsAdmin())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "could not issue session token", nil)
		return
	}
	writeJSON(w, status, authResponse{Token: token, Member: memberToDTO(m)})
}

// Members

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	ms, err := s.Members.List(r.Context(), includeInactive)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]memberDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberToDTO(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": out})
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.Members.AddMember(r.Context(), members.AddMemberInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		MemberNumber: req.MemberNumber,
		JoinYear:     req.JoinYear,
		Role:         req.Role,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"member": memberToDTO(m)})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	m, err := s.Members.Get(r.Context(), sess.MemberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": memberToDTO(m)})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	var req updateMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.Members.UpdateProfile(r.Context(), sess.MemberID, profilePatchFromRequest(req))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": memberToDTO(m)})
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.Members.Get(r.Context(), domain.MemberID(chi.URLParam(r, "memberID")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": memberToDTO(m)})
}

func (s *Server) handleAdminUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := members.AdminUpdateInput{
		UpdateProfileInput: profilePatchFromRequest(req),
		MemberNumber:       memberOpt(req.MemberNumber),
		JoinYear:           memberOpt(req.JoinYear),
		Role:               memberOpt(req.Role),
		Status:             memberOpt(req.Status),
	}
	m, err := s.Members.AdminUpdate(r.Context(), domain.MemberID(chi.URLParam(r, "memberID")), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": memberToDTO(m)})
}

func (s *Server) handleMemberStats(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	memberID := domain.MemberID(chi.URLParam(r, "memberID"))
	if memberID != sess.MemberID && !sess.Admin {
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "stats are visible to the member and admins only", nil)
		return
	}
	if _, err := s.Members.Get(r.Context(), memberID); err != nil {
		writeAppError(w, r, err)
		return
	}

	count, err := s.Attendance.Count(r.Context(), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	pct, err := s.Attendance.Percentage(r.Context(), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	total, err := s.Hours.TotalHours(r.Context(), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	participated, err := s.Hours.EventsParticipated(r.Context(), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberStatsResponse{
		MemberID:             string(memberID),
		AttendanceCount:      count,
		AttendancePercentage: pct,
		TotalHours:           total,
		EventsParticipated:   participated,
	})
}

// Meetings

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	ms, err := s.Meetings.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]meetingDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, meetingToDTO(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": out})
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.Meetings.Create(r.Context(), meetings.CreateMeetingInput{
		Type:               req.Type,
		Title:              req.Title,
		Date:               req.Date,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Location:           req.Location,
		ExpectedAttendance: req.ExpectedAttendance,
		Agenda:             req.Agenda,
		Roles:              meetingRolesFromRequest(req.Roles),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := s.Meetings.Get(r.Context(), meetingID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	var req updateMeetingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := s.Meetings.Update(r.Context(), meetingID(r), meetings.UpdateMeetingInput{
		Type:               meetingOpt(req.Type),
		Title:              meetingOpt(req.Title),
		Date:               meetingOpt(req.Date),
		StartTime:          meetingOpt(req.StartTime),
		EndTime:            meetingOpt(req.EndTime),
		Location:           meetingOpt(req.Location),
		ExpectedAttendance: meetingOpt(req.ExpectedAttendance),
		Agenda:             meetingOpt(req.Agenda),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleRotateMeetingQR(w http.ResponseWriter, r *http.Request) {
	m, err := s.Meetings.RotateQR(r.Context(), meetingID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleSetMeetingSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var member *domain.MemberID
	if req.MemberID.IsSpecified() && !req.MemberID.IsNull() {
		id := domain.MemberID(req.MemberID.MustGet())
		member = &id
	}
	m, err := s.Meetings.SetRoleSlot(r.Context(), meetingID(r), chi.URLParam(r, "slot"), member)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleMeetingSignup(w http.ResponseWriter, r *http.Request) {
	memberID, ok := s.signupActor(w, r)
	if !ok {
		return
	}
	m, err := s.Roster.AssignMeetingRole(r.Context(), meetingID(r), chi.URLParam(r, "roleName"), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleMeetingSignoff(w http.ResponseWriter, r *http.Request) {
	memberID, ok := s.signoffActor(w, r)
	if !ok {
		return
	}
	m, err := s.Roster.UnassignMeetingRoles(r.Context(), meetingID(r), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": meetingToDTO(m)})
}

func (s *Server) handleMeetingAttendance(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Attendance.ListForMeeting(r.Context(), meetingID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]attendanceRecordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, attendanceToDTO(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"attendance": out})
}

func (s *Server) handleAddGuest(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	var req addGuestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := s.Meetings.AddGuest(r.Context(), sess.MemberID, meetingID(r), meetings.GuestInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"guest": guestToDTO(g)})
}

func (s *Server) handleListGuests(w http.ResponseWriter, r *http.Request) {
	gs, err := s.Meetings.ListGuests(r.Context(), meetingID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]guestDTO, 0, len(gs))
	for _, g := range gs {
		out = append(out, guestToDTO(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"guests": out})
}

// Events

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	es, err := s.Events.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]eventDTO, 0, len(es))
	for _, e := range es {
		out = append(out, eventToDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := s.Events.Create(r.Context(), events.CreateEventInput{
		Name:          req.Name,
		Description:   req.Description,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Location:      req.Location,
		MaxVolunteers: req.MaxVolunteers,
		Roles:         eventRolesFromRequest(req.Roles),
		Champion:      req.Champion,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.Events.Get(r.Context(), eventID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := s.Events.Update(r.Context(), eventID(r), events.UpdateEventInput{
		Name:          eventOpt(req.Name),
		Description:   eventOpt(req.Description),
		Date:          eventOpt(req.Date),
		StartTime:     eventOpt(req.StartTime),
		EndTime:       eventOpt(req.EndTime),
		Location:      eventOpt(req.Location),
		MaxVolunteers: eventOpt(req.MaxVolunteers),
		Champion:      eventOpt(req.Champion),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleRotateEventQR(w http.ResponseWriter, r *http.Request) {
	e, err := s.Events.RotateQR(r.Context(), eventID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleEventSignup(w http.ResponseWriter, r *http.Request) {
	memberID, ok := s.signupActor(w, r)
	if !ok {
		return
	}
	e, err := s.Roster.AssignEventRole(r.Context(), eventID(r), chi.URLParam(r, "roleName"), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleEventSignoff(w http.ResponseWriter, r *http.Request) {
	memberID, ok := s.signoffActor(w, r)
	if !ok {
		return
	}
	e, err := s.Roster.UnassignEventRoles(r.Context(), eventID(r), memberID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := s.Roster.Invite(r.Context(), eventID(r), domain.MemberID(req.MemberID))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleCancelInvitation(w http.ResponseWriter, r *http.Request) {
	e, err := s.Roster.CancelInvitation(r.Context(), eventID(r), domain.MemberID(chi.URLParam(r, "memberID")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleRespondInvitation(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	var req respondInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := s.Roster.RespondToInvitation(r.Context(), eventID(r), sess.MemberID, domain.InvitationStatus(req.Status))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": eventToDTO(e)})
}

func (s *Server) handleEventFill(w http.ResponseWriter, r *http.Request) {
	fill, err := s.Roster.Fill(r.Context(), eventID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	roles := make([]roleFillDTO, 0, len(fill.Roles))
	for _, rf := range fill.Roles {
		roles = append(roles, roleFillDTO{
			Name:           rf.Name,
			Capacity:       rf.Capacity,
			Signups:        rf.Signups,
			SpotsRemaining: rf.SpotsRemaining,
		})
	}
	writeJSON(w, http.StatusOK, eventFillResponse{
		EventID:        string(fill.EventID),
		MaxVolunteers:  fill.MaxVolunteers,
		TotalSignups:   fill.TotalSignups,
		FillPercentage: fill.FillPercentage,
		SpotsRemaining: fill.SpotsRemaining,
		Roles:          roles,
	})
}

// Scan

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.Scanner.Scan(r.Context(), sess.MemberID, req.Code)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	resp := scanResponse{
		Kind:             string(res.Kind),
		AlreadyCheckedIn: res.AlreadyCheckedIn,
		AttendanceCount:  res.AttendanceCount,
		TotalHours:       res.TotalHours,
	}
	if res.Meeting != nil {
		dto := meetingToDTO(*res.Meeting)
		resp.Meeting = &dto
	}
	if res.Event != nil {
		dto := eventToDTO(*res.Event)
		resp.Event = &dto
	}
	if res.Attendance != nil {
		dto := attendanceToDTO(*res.Attendance)
		resp.Attendance = &dto
	}
	if res.HourRecord != nil {
		dto := hourRecordToDTO(*res.HourRecord)
		resp.HourRecord = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// Helpers

// signupActor resolves who a role signup applies to: the caller, or a
// member named in the body when the caller is an admin.
func (s *Server) signupActor(w http.ResponseWriter, r *http.Request) (domain.MemberID, bool) {
	sess, _ := SessionFromContext(r.Context())
	var req signupRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return "", false
		}
	}
	if req.MemberID == "" || domain.MemberID(req.MemberID) == sess.MemberID {
		return sess.MemberID, true
	}
	if !sess.Admin {
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "only admins may sign up other members", nil)
		return "", false
	}
	return domain.MemberID(req.MemberID), true
}

func (s *Server) signoffActor(w http.ResponseWriter, r *http.Request) (domain.MemberID, bool) {
	sess, _ := SessionFromContext(r.Context())
	raw := r.URL.Query().Get("memberId")
	if raw == "" || domain.MemberID(raw) == sess.MemberID {
		return sess.MemberID, true
	}
	if !sess.Admin {
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "only admins may remove other members", nil)
		return "", false
	}
	return domain.MemberID(raw), true
}

func meetingID(r *http.Request) domain.MeetingID {
	return domain.MeetingID(chi.URLParam(r, "meetingID"))
}

func eventID(r *http.Request) domain.EventID {
	return domain.EventID(chi.URLParam(r, "eventID"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func profilePatchFromRequest(req updateMemberRequest) members.UpdateProfileInput {
	return members.UpdateProfileInput{
		Name:     memberOpt(req.Name),
		Email:    memberOpt(req.Email),
		Phone:    memberOpt(req.Phone),
		Address:  memberOpt(req.Address),
		Password: memberOpt(req.Password),
	}
}

func meetingRolesFromRequest(in []roleInput) []meetings.RoleInput {
	out := make([]meetings.RoleInput, 0, len(in))
	for _, r := range in {
		out = append(out, meetings.RoleInput{Name: r.Name, Capacity: r.Capacity})
	}
	return out
}

func eventRolesFromRequest(in []roleInput) []events.RoleInput {
	out := make([]events.RoleInput, 0, len(in))
	for _, r := range in {
		out = append(out, events.RoleInput{Name: r.Name, Capacity: r.Capacity})
	}
	return out
}

func memberOpt[T any](n nullable.Nullable[T]) members.Optional[T] {
	if !n.IsSpecified() {
		return members.Unspecified[T]()
	}
	if n.IsNull() {
		return members.Null[T]()
	}
	return members.Some(n.MustGet())
}

func meetingOpt[T any](n nullable.Nullable[T]) meetings.Optional[T] {
	if !n.IsSpecified() {
		return meetings.Unspecified[T]()
	}
	if n.IsNull() {
		return meetings.Null[T]()
	}
	return meetings.Some(n.MustGet())
}

func eventOpt[T any](n nullable.Nullable[T]) events.Optional[T] {
	if !n.IsSpecified() {
		return events.Unspecified[T]()
	}
	if n.IsNull() {
		return events.Null[T]()
	}
	return events.Some(n.MustGet())
}
