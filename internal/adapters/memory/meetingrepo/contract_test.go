package meetingrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	meetingrepoport "clubtracker-backend/internal/ports/out/meetingrepo"
)

func TestContract_MemoryMeetingRepo(t *testing.T) {
	contracttest.RunMeetingRepo(t, func(t *testing.T) (meetingrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
