package memberrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	"clubtracker-backend/internal/adapters/postgres/testutil"
	memberrepoport "clubtracker-backend/internal/ports/out/memberrepo"
)

func TestContract_PostgresMemberRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunMemberRepo(t, func(t *testing.T) (memberrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
