package attendancerepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	"clubtracker-backend/internal/adapters/postgres/testutil"
	attendancerepoport "clubtracker-backend/internal/ports/out/attendancerepo"
)

func TestContract_PostgresAttendanceRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunAttendanceRepo(t, func(t *testing.T) (attendancerepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
