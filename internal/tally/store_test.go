package tally

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votebridge/votebridge/internal/vote"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "votes.json")
	return NewStore(vote.DefaultRoster(), NewStateFile(path))
}

func TestRecordVote_CountsAndPending(t *testing.T) {
	s := newTestStore(t)

	const n = 5
	for i := 0; i < n; i++ {
		require.True(t, s.RecordVote(1))
	}

	snap := s.Snapshot()
	assert.Equal(t, n, snap[1])
	assert.Equal(t, 0, snap[2])
	assert.Equal(t, n, s.Pending())
}

func TestRecordVote_UnknownCandidate(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.RecordVote(99))
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, s.Snapshot().Total())
}

func TestRecordVote_PersistsEveryMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.json")
	file := NewStateFile(path)
	s := NewStore(vote.DefaultRoster(), file)

	s.RecordVote(2)
	s.RecordVote(2)
	s.RecordVote(4)

	saved, ok, err := file.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vote.Tally{1: 0, 2: 2, 3: 0, 4: 1}, saved)
}

func TestRecordVote_SurvivesWriteFailure(t *testing.T) {
	// Point the state file at a directory that does not exist: every save
	// fails, but the in-memory tally must stay authoritative.
	path := filepath.Join(t.TempDir(), "missing-dir", "votes.json")
	s := NewStore(vote.DefaultRoster(), NewStateFile(path))

	require.True(t, s.RecordVote(3))
	require.True(t, s.RecordVote(3))

	assert.Equal(t, 2, s.Snapshot()[3])
	assert.Equal(t, 2, s.Pending())
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newTestStore(t)
	s.RecordVote(1)

	snap := s.Snapshot()
	snap[1] = 100

	assert.Equal(t, 1, s.Snapshot()[1])
}

func TestSnapshot_Idempotent(t *testing.T) {
	s := newTestStore(t)
	s.RecordVote(1)
	s.RecordVote(2)

	assert.Equal(t, s.Snapshot(), s.Snapshot())
}

func TestReconcile_RemoteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.json")
	file := NewStateFile(path)
	require.NoError(t, file.Save(vote.Tally{1: 9, 2: 9, 3: 9, 4: 9}))

	s := NewStore(vote.DefaultRoster(), file)
	src := s.Reconcile(vote.Tally{1: 3, 2: 5, 3: 0, 4: 1})

	assert.Equal(t, SourceRemote, src)
	assert.Equal(t, vote.Tally{1: 3, 2: 5, 3: 0, 4: 1}, s.Snapshot())

	// Remote state overwrites the local file immediately.
	saved, ok, err := file.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vote.Tally{1: 3, 2: 5, 3: 0, 4: 1}, saved)
}

func TestReconcile_FallsBackToLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.json")
	file := NewStateFile(path)
	require.NoError(t, file.Save(vote.Tally{1: 3, 2: 5, 3: 0, 4: 1}))

	s := NewStore(vote.DefaultRoster(), file)
	src := s.Reconcile(nil)

	assert.Equal(t, SourceLocal, src)
	assert.Equal(t, vote.Tally{1: 3, 2: 5, 3: 0, 4: 1}, s.Snapshot())
}

func TestReconcile_DefaultsToZero(t *testing.T) {
	s := newTestStore(t)
	src := s.Reconcile(nil)

	assert.Equal(t, SourceZero, src)
	assert.Equal(t, vote.Tally{1: 0, 2: 0, 3: 0, 4: 0}, s.Snapshot())
}

func TestReconcile_DropsUnknownIDs(t *testing.T) {
	s := newTestStore(t)
	s.Reconcile(vote.Tally{1: 2, 7: 40})

	snap := s.Snapshot()
	assert.Equal(t, 2, snap[1])
	assert.NotContains(t, snap, vote.ID(7))
}

func TestReconcile_CorruptLocalFileStartsFromZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "votes.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	s := NewStore(vote.DefaultRoster(), NewStateFile(path))
	src := s.Reconcile(nil)

	assert.Equal(t, SourceZero, src)
	assert.Equal(t, 0, s.Snapshot().Total())
}
