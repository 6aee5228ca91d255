package runner

import "github.com/google/uuid"

// TokenGenerator produces the session token that correlates one run's log
// lines and uploads. Implemented by UUIDv7Generator (production) and
// testutil.FixedTokens (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-ordered UUIDs, so session tokens sort by
// start time across restarts.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
