// Package confirmation implements the short-lived username -> one-time-code
// mapping behind the passwordless signup/login flow. Codes are uuid4 strings;
// only a bcrypt hash of the code is kept in the store, so a compromised cache
// does not leak live codes.
package confirmation

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store issues and verifies confirmation codes. Issuing a new code for a
// username supersedes any previous one. Verify does not consume the code:
// it stays valid until the TTL lapses.
type Store interface {
	// Issue generates a fresh code for username, stores it with the
	// configured TTL and returns the plaintext code for out-of-band delivery.
	Issue(ctx context.Context, username string) (string, error)

	// Verify reports whether code matches the live code stored for username.
	Verify(ctx context.Context, username string, code string) (bool, error)
}

func generateCode() string {
	return uuid.NewString()
}

func hashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func compareCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
