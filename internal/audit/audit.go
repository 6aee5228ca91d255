// Package audit appends an immutable CSV record for every accepted vote.
//
// The audit trail is independent of the tally: it is history, not state.
// Writes are best-effort. A failed append is reported to the caller so it
// can be logged, but vote counting never stops because of it.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/votebridge/votebridge/internal/vote"
)

var header = []string{"timestamp", "candidate_id", "candidate_name"}

// Log appends vote records to a CSV file. The header row is written
// exactly once, when the file is first created. Records are never
// rewritten.
type Log struct {
	path string
}

// NewLog returns an audit log writing to path. The file is created on the
// first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file's location.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record for an accepted vote. Timestamps are RFC 3339.
func (l *Log) Append(ts time.Time, c vote.Candidate) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write audit header: %w", err)
		}
	}
	row := []string{ts.Format(time.RFC3339), strconv.Itoa(int(c.ID)), c.Name}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush audit record: %w", err)
	}
	return nil
}
