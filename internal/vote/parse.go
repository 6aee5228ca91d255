package vote

import (
	"strconv"
	"strings"
)

// ReadySignal is emitted by the device once after reset, before any votes.
const ReadySignal = "READY"

// voteTag is the literal first token of a vote line.
const voteTag = "VOTE"

// Event is one parsed vote instruction: a single vote for Candidate.
// Events are transient; they exist only while one input line is processed.
type Event struct {
	Candidate ID
}

// ParseLine decodes one raw line from the device stream.
//
// A vote line is exactly two comma-separated tokens: the literal tag VOTE
// and an integer candidate ID. Anything else (empty lines, the READY
// signal, diagnostic output, malformed votes) returns ok=false and is
// ignorable without error. Membership in the roster is not checked here;
// the tally store rejects unknown IDs.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, ",")
	if len(parts) != 2 || parts[0] != voteTag {
		return Event{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Event{}, false
	}
	return Event{Candidate: ID(id)}, true
}

// IsReady reports whether line is the device's post-reset readiness signal.
func IsReady(line string) bool {
	return strings.TrimSpace(line) == ReadySignal
}
