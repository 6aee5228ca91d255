package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/votebridge/votebridge/internal/config"
	"github.com/votebridge/votebridge/internal/report"
	"github.com/votebridge/votebridge/internal/tally"
	"github.com/votebridge/votebridge/internal/uplink"
	"github.com/votebridge/votebridge/internal/vote"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Remote bool
}

// statusData is the JSON payload for the status command.
type statusData struct {
	Source     string       `json:"source"` // "local" or "remote"
	Candidates []countEntry `json:"candidates"`
	Total      int          `json:"total"`
}

type countEntry struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current vote totals",
		Long: `Show vote totals from the local state file, or from the remote
channel with --remote. This reads state only; the bridge daemon does
not need to be running.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "read totals from the remote channel instead of the local file")

	return cmd
}

func showStatus(opts *StatusOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return WrapExitError(ExitFailure, "configuration error", err)
	}
	roster, err := loadRoster(cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "roster error", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var (
		t      vote.Tally
		source string
	)
	if opts.Remote {
		client, err := uplink.New(uplink.Config{
			BaseURL:   cfg.BaseURL,
			WriteKey:  cfg.WriteKey,
			ReadKey:   cfg.ReadKey,
			ChannelID: cfg.ChannelID,
			Timeout:   cfg.HTTPTimeout,
		}, roster)
		if err != nil {
			return WrapExitError(ExitFailure, "remote client error", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		t, err = client.FetchState(ctx)
		if err != nil {
			f.Failure(err.Error())
			return NewExitError(ExitFailure, "remote state unavailable")
		}
		source = "remote"
	} else {
		saved, ok, err := tally.NewStateFile(cfg.StateFile).Load()
		if err != nil {
			return WrapExitError(ExitFailure, "state file error", err)
		}
		if !ok {
			saved = vote.NewTally(roster)
		}
		t = saved
		source = "local"
	}

	data := statusData{Source: source, Total: t.Total()}
	for _, c := range roster.Candidates() {
		data.Candidates = append(data.Candidates, countEntry{ID: int(c.ID), Name: c.Name, Count: t[c.ID]})
	}

	return f.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "Source: %s\n", source)
		report.Render(w, roster, t)
	})
}
