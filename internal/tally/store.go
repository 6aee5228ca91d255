package tally

import (
	"log/slog"

	"github.com/votebridge/votebridge/internal/vote"
)

// Source identifies where the startup tally came from.
type Source int

const (
	// SourceZero means neither remote nor local state was available.
	SourceZero Source = iota
	// SourceLocal means the local state file seeded the tally.
	SourceLocal
	// SourceRemote means the remote channel seeded the tally.
	SourceRemote
)

// String returns the source name for logging.
func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceLocal:
		return "local"
	default:
		return "zero"
	}
}

// Store holds the in-memory tally and the count of votes accumulated since
// the last successful upload.
//
// Store is not safe for concurrent use. All mutation happens on the
// runner's single loop goroutine; a future design with concurrent
// producers must add a mutex or route writes through a single channel.
type Store struct {
	roster  *vote.Roster
	tally   vote.Tally
	pending int
	file    *StateFile
}

// NewStore creates a store with all-zero counts for the roster. Call
// Reconcile before recording votes.
func NewStore(roster *vote.Roster, file *StateFile) *Store {
	return &Store{
		roster: roster,
		tally:  vote.NewTally(roster),
		file:   file,
	}
}

// Reconcile seeds the tally exactly once, at startup.
//
// A non-nil remote tally is authoritative: it is adopted and immediately
// written over the local state file. When remote is nil the local state
// file's last save is used, and when that is also absent every count
// starts at zero. Counts for IDs outside the roster are dropped; roster
// IDs missing from the source start at zero.
func (s *Store) Reconcile(remote vote.Tally) Source {
	if remote != nil {
		s.adopt(remote)
		if err := s.file.Save(s.tally); err != nil {
			slog.Warn("could not persist reconciled state", "error", err)
		}
		return SourceRemote
	}

	local, ok, err := s.file.Load()
	if err != nil {
		slog.Warn("could not load local state, starting from zero", "error", err)
		return SourceZero
	}
	if !ok {
		return SourceZero
	}
	s.adopt(local)
	return SourceLocal
}

func (s *Store) adopt(src vote.Tally) {
	s.tally = vote.NewTally(s.roster)
	for id, n := range src {
		if s.roster.Contains(id) {
			s.tally[id] = n
		}
	}
}

// RecordVote applies one vote for id.
//
// Returns false without any side effect when id is not in the roster.
// Otherwise the candidate's count and the pending-upload count are
// incremented and the full tally is written to the state file. A failed
// write is logged and swallowed: the in-memory tally stays authoritative
// and the next mutation retries the write.
func (s *Store) RecordVote(id vote.ID) bool {
	if !s.roster.Contains(id) {
		return false
	}
	s.tally[id]++
	s.pending++
	if err := s.file.Save(s.tally); err != nil {
		slog.Error("could not save votes", "error", err)
	}
	return true
}

// Snapshot returns a read-only copy of the tally. The store's own map is
// never handed out.
func (s *Store) Snapshot() vote.Tally {
	return s.tally.Clone()
}

// Pending returns the number of votes accumulated since the last
// successful upload.
func (s *Store) Pending() int {
	return s.pending
}

// ResetPending zeroes the pending-upload count. Called only after a
// successful push.
func (s *Store) ResetPending() {
	s.pending = 0
}

// Roster returns the candidate set the store validates against.
func (s *Store) Roster() *vote.Roster {
	return s.roster
}
