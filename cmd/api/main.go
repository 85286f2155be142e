package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clubtracker-backend/internal/adapters/httpapi"
	memattendancerepo "clubtracker-backend/internal/adapters/memory/attendancerepo"
	memeventrepo "clubtracker-backend/internal/adapters/memory/eventrepo"
	memguestrepo "clubtracker-backend/internal/adapters/memory/guestrepo"
	memhoursrepo "clubtracker-backend/internal/adapters/memory/hoursrepo"
	memmeetingrepo "clubtracker-backend/internal/adapters/memory/meetingrepo"
	memmemberrepo "clubtracker-backend/internal/adapters/memory/memberrepo"
	postgres "clubtracker-backend/internal/adapters/postgres"
	pgattendancerepo "clubtracker-backend/internal/adapters/postgres/attendancerepo"
	pgeventrepo "clubtracker-backend/internal/adapters/postgres/eventrepo"
	pgguestrepo "clubtracker-backend/internal/adapters/postgres/guestrepo"
	pghoursrepo "clubtracker-backend/internal/adapters/postgres/hoursrepo"
	pgmeetingrepo "clubtracker-backend/internal/adapters/postgres/meetingrepo"
	pgmemberrepo "clubtracker-backend/internal/adapters/postgres/memberrepo"
	"clubtracker-backend/internal/app/attendance"
	"clubtracker-backend/internal/app/events"
	"clubtracker-backend/internal/app/hours"
	"clubtracker-backend/internal/app/meetings"
	"clubtracker-backend/internal/app/members"
	"clubtracker-backend/internal/app/roster"
	"clubtracker-backend/internal/app/scan"
	"clubtracker-backend/internal/platform/auth"
	platformclock "clubtracker-backend/internal/platform/clock"
	"clubtracker-backend/internal/platform/config"
	"clubtracker-backend/internal/platform/logging"
	attendancerepoport "clubtracker-backend/internal/ports/out/attendancerepo"
	eventrepoport "clubtracker-backend/internal/ports/out/eventrepo"
	guestrepoport "clubtracker-backend/internal/ports/out/guestrepo"
	hoursrepoport "clubtracker-backend/internal/ports/out/hoursrepo"
	meetingrepoport "clubtracker-backend/internal/ports/out/meetingrepo"
	memberrepoport "clubtracker-backend/internal/ports/out/memberrepo"
)

func main() {
	// Best effort; env vars win over .env entries.
	_ = godotenv.Load()

	log := logging.New()
	port := getenv("PORT", "8080")

	authCfg, err := config.LoadAuthConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid auth config: %v", err)
	}
	attCfg, err := config.LoadAttendanceConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid attendance config: %v", err)
	}

	tokens := auth.NewTokens(authCfg)
	clk := platformclock.NewSystemClock()

	storageBackend := getenv("STORAGE_BACKEND", "memory")
	var (
		memberRepo     memberrepoport.Repository
		meetingRepo    meetingrepoport.Repository
		eventRepo      eventrepoport.Repository
		attendanceRepo attendancerepoport.Repository
		hoursRepo      hoursrepoport.Repository
		guestRepo      guestrepoport.Repository
		cleanup        func()
	)

	switch storageBackend {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		memberRepo = pgmemberrepo.NewRepo(pool)
		meetingRepo = pgmeetingrepo.NewRepo(pool)
		eventRepo = pgeventrepo.NewRepo(pool)
		attendanceRepo = pgattendancerepo.NewRepo(pool)
		hoursRepo = pghoursrepo.NewRepo(pool)
		guestRepo = pgguestrepo.NewRepo(pool)
	default:
		memberRepo = memmemberrepo.NewRepo()
		meetingRepo = memmeetingrepo.NewRepo()
		eventRepo = memeventrepo.NewRepo()
		attendanceRepo = memattendancerepo.NewRepo()
		hoursRepo = memhoursrepo.NewRepo()
		guestRepo = memguestrepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	memberSvc := members.NewService(memberRepo, clk)
	meetingSvc := meetings.NewService(meetingRepo, attendanceRepo, guestRepo, memberRepo, clk)
	eventSvc := events.NewService(eventRepo, memberRepo, clk)
	attendanceSvc := attendance.NewService(attendanceRepo, meetingRepo, attCfg.MeetingsPerYear)
	hoursSvc := hours.NewService(hoursRepo, eventRepo)
	rosterSvc := roster.NewService(meetingRepo, eventRepo, memberRepo, clk)
	scanner := scan.NewDispatcher(meetingRepo, eventRepo, attendanceSvc, hoursSvc, clk)

	api := httpapi.NewServer(memberSvc, meetingSvc, eventSvc, attendanceSvc, hoursSvc, rosterSvc, scanner, tokens)
	handler := httpapi.NewRouter(api, log)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("port", port).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
