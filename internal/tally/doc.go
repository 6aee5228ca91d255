// Package tally owns the authoritative vote counts for a run.
//
// The Store is the single mutable copy of the tally. It is mutated only by
// the runner's loop goroutine, persisted to a flat JSON state file after
// every accepted vote, and seeded exactly once at startup by Reconcile:
// remote state wins when available, the local state file is the fallback,
// and all-zero counts are the default.
package tally
