package domain

import (
	"math/rand/v2"
	"strings"
)

const (
	demoUsernameLetters = 4
	demoUsernameDigits  = 2
	demoPasswordLength  = 8

	lowercase    = "abcdefghijklmnopqrstuvwxyz"
	alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateDemoUsername derives a human-readable demo username from the
// customer's first name: "demo_" plus four lowercase letters plus two
// digits. Short or non-alphabetic names are padded with random letters.
// Uniqueness is best-effort; the store's unique constraint is the
// backstop.
func GenerateDemoUsername(firstName string) string {
	var letters strings.Builder
	for _, r := range strings.ToLower(firstName) {
		if r >= 'a' && r <= 'z' {
			letters.WriteRune(r)
			if letters.Len() == demoUsernameLetters {
				break
			}
		}
	}
	for letters.Len() < demoUsernameLetters {
		letters.WriteByte(lowercase[rand.IntN(len(lowercase))])
	}

	var digits strings.Builder
	for i := 0; i < demoUsernameDigits; i++ {
		digits.WriteByte('0' + byte(rand.IntN(10)))
	}

	return "demo_" + letters.String() + digits.String()
}

// GenerateDemoPassword returns an 8-character lowercase-alphanumeric
// password.
func GenerateDemoPassword() string {
	var b strings.Builder
	for i := 0; i < demoPasswordLength; i++ {
		b.WriteByte(alphanumeric[rand.IntN(len(alphanumeric))])
	}
	return b.String()
}
