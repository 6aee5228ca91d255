package tally

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/votebridge/votebridge/internal/vote"
)

// StateFile reads and writes the durable tally snapshot: a JSON object
// mapping candidate ID to count, fully rewritten on every save.
type StateFile struct {
	path string
}

// NewStateFile returns a state file handle for path. The file is not
// touched until Load or Save is called.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Path returns the file's location.
func (f *StateFile) Path() string {
	return f.path
}

// Load reads the last saved tally. ok is false when the file does not
// exist; a file that exists but cannot be parsed is an error.
func (f *StateFile) Load() (t vote.Tally, ok bool, err error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read state file: %w", err)
	}

	// Keys are strings in JSON; convert back to candidate IDs.
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("parse state file %s: %w", f.path, err)
	}
	t = make(vote.Tally, len(raw))
	for k, n := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, false, fmt.Errorf("parse state file %s: bad candidate key %q", f.path, k)
		}
		if n < 0 {
			n = 0
		}
		t[vote.ID(id)] = n
	}
	return t, true, nil
}

// Save rewrites the file with the given tally. The write goes to a
// temporary file in the same directory followed by a rename, so a crash
// mid-write never leaves a truncated state file behind.
func (f *StateFile) Save(t vote.Tally) error {
	raw := make(map[string]int, len(t))
	for id, n := range t {
		raw[strconv.Itoa(int(id))] = n
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".votes-*.tmp")
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
