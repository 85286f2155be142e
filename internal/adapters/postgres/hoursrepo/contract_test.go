package hoursrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	"clubtracker-backend/internal/adapters/postgres/testutil"
	hoursrepoport "clubtracker-backend/internal/ports/out/hoursrepo"
)

func TestContract_PostgresHoursRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunHoursRepo(t, func(t *testing.T) (hoursrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
