package vote

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ID identifies a candidate. IDs are small positive integers assigned by
// whoever configures the roster; the device reports votes by ID only.
type ID int

// Candidate pairs an ID with its display name.
type Candidate struct {
	ID   ID
	Name string
}

// Roster is the fixed set of candidates known for a run.
//
// Construction normalizes display names to NFC so that audit rows and
// reports are byte-stable regardless of the Unicode form used in the
// roster file.
type Roster struct {
	names map[ID]string
}

// DefaultRoster returns the built-in candidate set used when no roster
// file is configured.
func DefaultRoster() *Roster {
	return NewRoster(map[ID]string{
		1: "Japan",
		2: "Germany",
		3: "Switzerland",
		4: "Norway",
	})
}

// NewRoster builds a roster from an ID to name mapping.
func NewRoster(names map[ID]string) *Roster {
	r := &Roster{names: make(map[ID]string, len(names))}
	for id, name := range names {
		r.names[id] = norm.NFC.String(name)
	}
	return r
}

// LoadRoster reads a YAML roster file: a flat mapping of candidate ID to
// display name.
//
//	1: Japan
//	2: Germany
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var names map[ID]string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("roster %s: no candidates defined", path)
	}
	for id := range names {
		if id <= 0 {
			return nil, fmt.Errorf("roster %s: candidate IDs must be positive, got %d", path, id)
		}
	}
	return NewRoster(names), nil
}

// Contains reports whether id is in the roster.
func (r *Roster) Contains(id ID) bool {
	_, ok := r.names[id]
	return ok
}

// Name returns the display name for id, or a placeholder for IDs outside
// the roster.
func (r *Roster) Name(id ID) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown-%d", id)
}

// IDs returns the roster's candidate IDs in ascending order.
func (r *Roster) IDs() []ID {
	ids := make([]ID, 0, len(r.names))
	for id := range r.names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Candidates returns the roster entries in ascending ID order.
func (r *Roster) Candidates() []Candidate {
	ids := r.IDs()
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, Candidate{ID: id, Name: r.names[id]})
	}
	return out
}

// Len returns the number of candidates in the roster.
func (r *Roster) Len() int {
	return len(r.names)
}

// Tally maps candidate ID to accumulated vote count.
//
// Counts are non-negative and, within a run, monotonically non-decreasing:
// votes only add. The zero-value map is not used directly; construct with
// NewTally so every roster candidate has an explicit entry.
type Tally map[ID]int

// NewTally returns a tally with a zero count for every roster candidate.
func NewTally(r *Roster) Tally {
	t := make(Tally, r.Len())
	for _, id := range r.IDs() {
		t[id] = 0
	}
	return t
}

// Total returns the sum of all counts.
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Clone returns an independent copy of the tally.
func (t Tally) Clone() Tally {
	out := make(Tally, len(t))
	for id, n := range t {
		out[id] = n
	}
	return out
}
