package guestrepo

import (
	"testing"

	"clubtracker-backend/internal/adapters/contracttest"
	guestrepoport "clubtracker-backend/internal/ports/out/guestrepo"
)

func TestContract_MemoryGuestRepo(t *testing.T) {
	contracttest.RunGuestRepo(t, func(t *testing.T) (guestrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
