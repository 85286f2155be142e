package meetingrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	"clubtracker-backend/internal/adapters/postgres/testutil"
	meetingrepoport "clubtracker-backend/internal/ports/out/meetingrepo"
)

func TestContract_PostgresMeetingRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunMeetingRepo(t, func(t *testing.T) (meetingrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
