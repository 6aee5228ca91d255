package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votebridge/votebridge/internal/tally"
	"github.com/votebridge/votebridge/internal/vote"
)

func setStatusEnv(t *testing.T, stateFile string) {
	t.Helper()
	t.Setenv("THINGSPEAK_WRITE_API_KEY", "WKEY")
	t.Setenv("THINGSPEAK_READ_API_KEY", "RKEY")
	t.Setenv("THINGSPEAK_CHANNEL_ID", "1234")
	t.Setenv("VOTEBRIDGE_STATE_FILE", stateFile)
	t.Setenv("VOTEBRIDGE_AUDIT_FILE", filepath.Join(t.TempDir(), "votes.csv"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatus_LocalStateFile(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "votes.json")
	require.NoError(t, tally.NewStateFile(stateFile).Save(vote.Tally{1: 3, 2: 5, 3: 0, 4: 1}))
	setStatusEnv(t, stateFile)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: local")
	assert.Contains(t, out, "Japan")
	assert.Contains(t, out, "   9 votes")
}

func TestStatus_LocalAbsentFileIsAllZero(t *testing.T) {
	setStatusEnv(t, filepath.Join(t.TempDir(), "votes.json"))

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "   0 votes")
}

func TestStatus_JSON(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "votes.json")
	require.NoError(t, tally.NewStateFile(stateFile).Save(vote.Tally{1: 2}))
	setStatusEnv(t, stateFile)

	out, err := execute(t, "status", "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStatus_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"field1":"7","field2":"0","field3":"0","field4":"0"}`))
	}))
	t.Cleanup(srv.Close)

	setStatusEnv(t, filepath.Join(t.TempDir(), "votes.json"))
	t.Setenv("VOTEBRIDGE_BASE_URL", srv.URL)

	out, err := execute(t, "status", "--remote")
	require.NoError(t, err)
	assert.Contains(t, out, "Source: remote")
	assert.Contains(t, out, "   7 votes")
}

func TestStatus_RemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	setStatusEnv(t, filepath.Join(t.TempDir(), "votes.json"))
	t.Setenv("VOTEBRIDGE_BASE_URL", srv.URL)

	_, err := execute(t, "status", "--remote")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStatus_MissingCredentials(t *testing.T) {
	t.Setenv("THINGSPEAK_WRITE_API_KEY", "")
	t.Setenv("THINGSPEAK_READ_API_KEY", "")
	t.Setenv("THINGSPEAK_CHANNEL_ID", "")

	_, err := execute(t, "status")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "THINGSPEAK")
}

func TestRun_MissingCredentialsIsStartupFatal(t *testing.T) {
	t.Setenv("THINGSPEAK_WRITE_API_KEY", "")
	t.Setenv("THINGSPEAK_READ_API_KEY", "")
	t.Setenv("THINGSPEAK_CHANNEL_ID", "")

	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
