package qrtoken_test

import (
	"strings"
	"testing"

	"clubtracker-backend/internal/qrtoken"
)

func TestEncodeDecode_RoundTripsAllTypes(t *testing.T) {
	t.Parallel()

	for _, typ := range []qrtoken.Type{qrtoken.TypeMeeting, qrtoken.TypeVolunteerIn, qrtoken.TypeVolunteerOut} {
		s := qrtoken.Encode(typ, "entity-1")
		tok, ok := qrtoken.Decode(s)
		if !ok {
			t.Fatalf("Decode(%q) not ok", s)
		}
		if tok.Type != typ || tok.EntityID != "entity-1" {
			t.Fatalf("decoded %+v from %q", tok, s)
		}
		if len(tok.Code) != 9 {
			t.Fatalf("code length %d from %q", len(tok.Code), s)
		}
		if strings.ToUpper(tok.Code) != tok.Code {
			t.Fatalf("code not uppercase: %q", tok.Code)
		}
	}
}

func TestEncode_FreshCodePerCall(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		s := qrtoken.Encode(qrtoken.TypeMeeting, "m1")
		if seen[s] {
			t.Fatalf("duplicate token %q", s)
		}
		seen[s] = true
	}
}

func TestDecode_RejectsMalformedInput(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"MEETING",
		"MEETING:m1",
		"MEETING:m1:ABC:extra",
		"DONATION:m1:ABC123XYZ",
		"meeting:m1:ABC123XYZ",
		"::",
	}
	for _, s := range bad {
		if _, ok := qrtoken.Decode(s); ok {
			t.Fatalf("Decode(%q) unexpectedly ok", s)
		}
	}
}

func TestDecode_DoesNotResolveEntity(t *testing.T) {
	t.Parallel()

	// Structurally valid tokens decode even for ids that do not exist.
	tok, ok := qrtoken.Decode("VOLUNTEER-OUT:no-such-event:ABC123XYZ")
	if !ok {
		t.Fatalf("expected ok")
	}
	if tok.EntityID != "no-such-event" || tok.Code != "ABC123XYZ" {
		t.Fatalf("tok=%+v", tok)
	}
}
