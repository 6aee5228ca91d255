package testutil

// ScriptedStream replays a fixed sequence of device lines, one per
// ReadLine call, then reports no line available forever after.
//
// OnExhausted, if set, runs once when the script runs out. Tests
// typically use it to cancel the runner's context so Run winds down
// after the scripted input is consumed.
type ScriptedStream struct {
	Lines       []string
	OnExhausted func()

	idx      int
	notified bool
	closed   bool
}

// ReadLine pops the next scripted line. ok is false once the script is
// exhausted.
func (s *ScriptedStream) ReadLine() (string, bool, error) {
	if s.idx < len(s.Lines) {
		line := s.Lines[s.idx]
		s.idx++
		return line, true, nil
	}
	if !s.notified {
		s.notified = true
		if s.OnExhausted != nil {
			s.OnExhausted()
		}
	}
	return "", false, nil
}

// Close marks the stream released.
func (s *ScriptedStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedStream) Closed() bool {
	return s.closed
}
