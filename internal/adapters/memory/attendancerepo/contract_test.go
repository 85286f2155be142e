package attendancerepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	attendancerepoport "clubtracker-backend/internal/ports/out/attendancerepo"
)

func TestContract_MemoryAttendanceRepo(t *testing.T) {
	contracttest.RunAttendanceRepo(t, func(t *testing.T) (attendancerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
