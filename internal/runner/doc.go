// Package runner composes the parser, tally store, audit log, upload
// scheduler, and remote client into the single-writer processing loop.
//
// Lifecycle: the caller connects the device stream, then Run reconciles
// the tally (remote state wins, local file is the fallback) and enters
// the loop: poll the stream for a line, record it if it is a vote, check
// whether an upload is due, yield briefly. An interrupt cancels the
// context; shutdown performs one final unconditional upload attempt when
// unsynced votes remain, ignoring the rate floor.
//
// All state mutation happens on the loop goroutine. Nothing here locks,
// because nothing else writes: if concurrent producers are ever added,
// the tally store, audit log, and upload counters all need to move behind
// a single mutex or a single-writer channel.
//
// No error inside the loop terminates the process. Malformed lines,
// failed file writes, and failed network calls are logged and contained
// at the operation boundary; the loop always reaches its next iteration.
package runner
