package testutil

// FixedTokens generates the same session token every time, for
// deterministic log and report comparison.
type FixedTokens struct {
	Token string
}

// Generate returns the fixed token, or "test-session" when unset.
func (g FixedTokens) Generate() string {
	if g.Token == "" {
		return "test-session"
	}
	return g.Token
}
