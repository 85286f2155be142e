package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter constructs the API HTTP router. Auth endpoints and the health
// check are open; everything else requires a bearer session token, and the
// management surface additionally requires the admin flag.
func NewRouter(s *Server, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(NewAuthMiddleware(s.Tokens))

		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.handleListMembers)
			r.With(requireAdmin).Post("/", s.handleAddMember)
			r.Get("/me", s.handleGetMe)
			r.Patch("/me", s.handleUpdateMe)
			r.Get("/{memberID}", s.handleGetMember)
			r.With(requireAdmin).Patch("/{memberID}", s.handleAdminUpdateMember)
			r.Get("/{memberID}/stats", s.handleMemberStats)
		})

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", s.handleListMeetings)
			r.With(requireAdmin).Post("/", s.handleCreateMeeting)
			r.Get("/{meetingID}", s.handleGetMeeting)
			r.With(requireAdmin).Patch("/{meetingID}", s.handleUpdateMeeting)
			r.With(requireAdmin).Post("/{meetingID}/qr/rotate", s.handleRotateMeetingQR)
			r.With(requireAdmin).Put("/{meetingID}/slots/{slot}", s.handleSetMeetingSlot)
			r.Post("/{meetingID}/roles/{roleName}/signup", s.handleMeetingSignup)
			r.Delete("/{meetingID}/signup", s.handleMeetingSignoff)
			r.Get("/{meetingID}/attendance", s.handleMeetingAttendance)
			r.Post("/{meetingID}/guests", s.handleAddGuest)
			r.Get("/{meetingID}/guests", s.handleListGuests)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.With(requireAdmin).Post("/", s.handleCreateEvent)
			r.Get("/{eventID}", s.handleGetEvent)
			r.With(requireAdmin).Patch("/{eventID}", s.handleUpdateEvent)
			r.With(requireAdmin).Post("/{eventID}/qr/rotate", s.handleRotateEventQR)
			r.Post("/{eventID}/roles/{roleName}/signup", s.handleEventSignup)
			r.Delete("/{eventID}/signup", s.handleEventSignoff)
			r.With(requireAdmin).Post("/{eventID}/invitations", s.handleInvite)
			r.With(requireAdmin).Delete("/{eventID}/invitations/{memberID}", s.handleCancelInvitation)
			r.Post("/{eventID}/invitations/respond", s.handleRespondInvitation)
			r.Get("/{eventID}/fill", s.handleEventFill)
		})

		r.Post("/scan", s.handleScan)
	})

	return r
}

func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
				"requestId": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
