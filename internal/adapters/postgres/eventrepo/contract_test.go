package eventrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	"clubtracker-backend/internal/adapters/postgres/testutil"
	eventrepoport "clubtracker-backend/internal/ports/out/eventrepo"
)

func TestContract_PostgresEventRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunEventRepo(t, func(t *testing.T) (eventrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
