package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/votebridge/votebridge/internal/audit"
	"github.com/votebridge/votebridge/internal/report"
	"github.com/votebridge/votebridge/internal/tally"
	"github.com/votebridge/votebridge/internal/vote"
)

// DeviceStream is the connected, line-oriented byte stream from the
// voting device. ReadLine must not block beyond a short read timeout:
// ok is false when no complete line is available yet. Errors are
// stream-level faults the runner logs and rides out.
type DeviceStream interface {
	ReadLine() (line string, ok bool, err error)
	Close() error
}

// RemoteStore is the remote telemetry channel as the runner sees it:
// read the last known state, write the current state. Implementations
// must bound each call with a timeout.
type RemoteStore interface {
	FetchState(ctx context.Context) (vote.Tally, error)
	PushState(ctx context.Context, t vote.Tally) (entry string, err error)
}

// Options wires a Runner. Stream, Store, Audit, and Remote are required;
// zero values elsewhere get production defaults.
type Options struct {
	Stream DeviceStream
	Store  *tally.Store
	Audit  *audit.Log
	Remote RemoteStore

	// UploadInterval is the remote's minimum inter-upload interval.
	UploadInterval time.Duration
	// PollInterval is the idle yield between loop iterations.
	PollInterval time.Duration

	// Clock defaults to the system clock.
	Clock Clock
	// Tokens defaults to UUIDv7 session tokens.
	Tokens TokenGenerator
	// StatusOut receives the rendered totals report after reconciliation,
	// after each successful upload, and on shutdown. Defaults to discard.
	StatusOut io.Writer
}

// Runner drives the processing loop. Create with New, use once.
type Runner struct {
	stream  DeviceStream
	store   *tally.Store
	audit   *audit.Log
	remote  RemoteStore
	clock   Clock
	sched   *Scheduler
	poll    time.Duration
	out     io.Writer
	session string
}

// New builds a Runner from opts and stamps its session token. The
// scheduler's interval floor starts counting from here.
func New(opts Options) *Runner {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	out := opts.StatusOut
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		stream:  opts.Stream,
		store:   opts.Store,
		audit:   opts.Audit,
		remote:  opts.Remote,
		clock:   clock,
		sched:   NewScheduler(clock, opts.UploadInterval),
		poll:    opts.PollInterval,
		out:     out,
		session: tokens.Generate(),
	}
}

// Session returns this run's correlation token.
func (r *Runner) Session() string {
	return r.session
}

// Run reconciles the tally and processes the stream until ctx is
// cancelled, then flushes and releases the stream. The error is always
// nil today; the signature leaves room for fatal loop faults.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("session started", "session", r.session)
	r.reconcile(ctx)
	r.printStatus()

	for {
		select {
		case <-ctx.Done():
			return r.shutdown()
		default:
		}

		line, ok, err := r.stream.ReadLine()
		if err != nil {
			slog.Warn("device read failed", "error", err)
		} else if ok {
			r.handleLine(line)
		}

		if r.sched.Due(r.store.Pending()) {
			r.upload(ctx)
		}

		r.clock.Sleep(r.poll)
	}
}

// reconcile seeds the tally: remote state is authoritative when
// reachable and non-empty, otherwise the local file, otherwise zero.
func (r *Runner) reconcile(ctx context.Context) {
	remote, err := r.remote.FetchState(ctx)
	if err != nil {
		// Deliberate: any fetch failure falls back to local state. The next
		// successful push overwrites the remote with absolute totals, so a
		// stale fallback self-heals.
		slog.Warn("remote state unavailable, falling back to local", "error", err)
		remote = nil
	}
	src := r.store.Reconcile(remote)
	slog.Info("tally reconciled", "source", src.String(), "total", r.store.Snapshot().Total())
}

func (r *Runner) handleLine(line string) {
	if vote.IsReady(line) {
		slog.Info("device ready")
		return
	}
	ev, ok := vote.ParseLine(line)
	if !ok {
		if line != "" {
			slog.Debug("device line ignored", "line", line)
		}
		return
	}

	roster := r.store.Roster()
	if !r.store.RecordVote(ev.Candidate) {
		slog.Warn("vote for unknown candidate ignored", "candidate", int(ev.Candidate))
		return
	}
	name := roster.Name(ev.Candidate)
	slog.Info("vote recorded",
		"candidate", name,
		"total", r.store.Snapshot()[ev.Candidate],
		"pending", r.store.Pending())

	if err := r.audit.Append(r.clock.Now(), vote.Candidate{ID: ev.Candidate, Name: name}); err != nil {
		slog.Error("audit append failed", "error", err)
	}
}

// upload pushes the current absolute totals. On success the pending
// count resets and the interval floor restarts; on failure both stay
// untouched so the next due check retries.
func (r *Runner) upload(ctx context.Context) {
	snap := r.store.Snapshot()
	entry, err := r.remote.PushState(ctx, snap)
	if err != nil {
		slog.Warn("upload failed", "error", err, "session", r.session)
		return
	}
	r.store.ResetPending()
	r.sched.MarkUploaded()
	slog.Info("uploaded", "entry", entry, "total", snap.Total(), "session", r.session)
	r.printStatus()
}

// shutdown performs the final best-effort flush and releases the stream.
// A failed final upload is logged but never changes the exit outcome.
func (r *Runner) shutdown() error {
	slog.Info("shutting down", "session", r.session)
	if r.store.Pending() > 0 {
		// The interval floor does not apply to the final flush.
		entry, err := r.remote.PushState(context.Background(), r.store.Snapshot())
		if err != nil {
			slog.Warn("final upload failed", "error", err)
		} else {
			r.store.ResetPending()
			slog.Info("final upload done", "entry", entry)
		}
	}
	r.printStatus()
	if err := r.stream.Close(); err != nil {
		slog.Warn("closing device stream", "error", err)
	}
	return nil
}

func (r *Runner) printStatus() {
	report.Render(r.out, r.store.Roster(), r.store.Snapshot())
}
