package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/votebridge/votebridge/internal/audit"
	"github.com/votebridge/votebridge/internal/config"
	"github.com/votebridge/votebridge/internal/runner"
	"github.com/votebridge/votebridge/internal/serialport"
	"github.com/votebridge/votebridge/internal/tally"
	"github.com/votebridge/votebridge/internal/uplink"
	"github.com/votebridge/votebridge/internal/vote"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Port string
	Baud int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bridge",
		Long: `Start the bridge daemon: connect to the voting device, reconcile the
tally against the remote channel (falling back to the local state file),
then relay votes until interrupted.

Example:
  votebridge run
  votebridge run --port /dev/ttyUSB0 --baud 9600 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "serial device path (overrides VOTEBRIDGE_PORT; \"auto\" detects)")
	cmd.Flags().IntVar(&opts.Baud, "baud", 0, "serial bit rate (overrides VOTEBRIDGE_BAUD)")

	return cmd
}

func runBridge(opts *RunOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return WrapExitError(ExitFailure, "configuration error", err)
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Baud != 0 {
		cfg.Baud = opts.Baud
	}

	roster, err := loadRoster(cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "roster error", err)
	}

	device, err := resolvePort(cfg.Port)
	if err != nil {
		return WrapExitError(ExitFailure, "no device stream available", err)
	}

	slog.Info("connecting", "device", device, "baud", cfg.Baud)
	stream, err := serialport.Open(device, cfg.Baud)
	if err != nil {
		return WrapExitError(ExitFailure, "could not open device", err)
	}
	// The device resets when the port opens; give it a moment before
	// reading.
	time.Sleep(cfg.SettleDelay)
	slog.Info("connected", "device", device)

	client, err := uplink.New(uplink.Config{
		BaseURL:   cfg.BaseURL,
		WriteKey:  cfg.WriteKey,
		ReadKey:   cfg.ReadKey,
		ChannelID: cfg.ChannelID,
		Timeout:   cfg.HTTPTimeout,
	}, roster)
	if err != nil {
		stream.Close()
		return WrapExitError(ExitFailure, "remote client error", err)
	}

	store := tally.NewStore(roster, tally.NewStateFile(cfg.StateFile))

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	r := runner.New(runner.Options{
		Stream:         stream,
		Store:          store,
		Audit:          audit.NewLog(cfg.AuditFile),
		Remote:         client,
		UploadInterval: cfg.UploadInterval,
		PollInterval:   cfg.PollInterval,
		StatusOut:      cmd.OutOrStdout(),
	})

	fmt.Fprintln(cmd.OutOrStdout(), "Bridge started. Waiting for votes...")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := r.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "bridge error", err)
	}
	slog.Info("bridge stopped gracefully")
	return nil
}

func loadRoster(cfg config.Config) (*vote.Roster, error) {
	if cfg.RosterFile == "" {
		return vote.DefaultRoster(), nil
	}
	return vote.LoadRoster(cfg.RosterFile)
}

// resolvePort turns the configured port into a concrete device path.
// "auto" scans for ports matching known device signatures: exactly one
// match is used directly, several matches use the first and log the
// rest, and zero matches is fatal with the available ports listed.
func resolvePort(port string) (string, error) {
	if port != "" && port != "auto" {
		return port, nil
	}

	likely, err := serialport.Detect()
	if err != nil {
		return "", err
	}
	if len(likely) == 0 {
		all, listErr := serialport.List()
		if listErr != nil || len(all) == 0 {
			return "", fmt.Errorf("no device detected and no serial ports available")
		}
		names := make([]string, 0, len(all))
		for _, p := range all {
			names = append(names, p.Device)
		}
		return "", fmt.Errorf("no device detected; available ports: %s (set VOTEBRIDGE_PORT or --port)",
			strings.Join(names, ", "))
	}
	if len(likely) > 1 {
		for _, p := range likely[1:] {
			slog.Warn("additional device candidate ignored", "device", p.Device, "description", p.Description)
		}
	}
	slog.Info("device detected", "device", likely[0].Device, "description", likely[0].Description)
	return likely[0].Device, nil
}
