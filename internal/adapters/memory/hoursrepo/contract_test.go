package hoursrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	hoursrepoport "clubtracker-backend/internal/ports/out/hoursrepo"
)

func TestContract_MemoryHoursRepo(t *testing.T) {
	contracttest.RunHoursRepo(t, func(t *testing.T) (hoursrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
