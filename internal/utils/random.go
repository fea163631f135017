package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCode returns n characters drawn uniformly from [A-Z0-9] using
// crypto/rand.
func RandomCode(n int) string {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand does not fail on supported platforms
		}
		b[i] = codeAlphabet[v.Int64()]
	}
	return string(b)
}

// NewTrackingID returns a fresh grievance tracking id, GRV-XXXXXXXX.
func NewTrackingID() string { return "GRV-" + RandomCode(8) }

// NewFamilyLabel returns a fresh public family label, FAM-XXXXXXXX.
func NewFamilyLabel() string { return "FAM-" + RandomCode(8) }

// NewResetToken returns a random (version 4) UUID string.
func NewResetToken() string { return uuid.NewString() }
