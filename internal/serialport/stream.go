package serialport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds each poll of the port so ReadLine never blocks the
// runner's loop.
const readTimeout = 100 * time.Millisecond

// Stream reads newline-delimited text from an open serial port without
// blocking beyond the read timeout. Invalid byte sequences are dropped,
// not fatal: the device side occasionally garbles a byte during reset.
type Stream struct {
	r   io.ReadCloser
	buf []byte
}

// Open opens the device at the given baud rate and wraps it in a Stream.
func Open(device string, baud int) (*Stream, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("configure %s: %w", device, err)
	}
	return newStream(port), nil
}

func newStream(r io.ReadCloser) *Stream {
	return &Stream{r: r}
}

// ReadLine returns the next complete line if one is available within the
// read timeout. ok is false when no full line has arrived yet. Carriage
// returns are stripped and invalid UTF-8 bytes dropped.
func (s *Stream) ReadLine() (string, bool, error) {
	if line, ok := s.popLine(); ok {
		return line, true, nil
	}

	chunk := make([]byte, 256)
	n, err := s.r.Read(chunk)
	if n > 0 {
		s.buf = append(s.buf, chunk[:n]...)
	}
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("read serial port: %w", err)
	}

	if line, ok := s.popLine(); ok {
		return line, true, nil
	}
	return "", false, nil
}

// popLine extracts the first buffered line, if any.
func (s *Stream) popLine() (string, bool) {
	i := bytes.IndexByte(s.buf, '\n')
	if i < 0 {
		return "", false
	}
	raw := s.buf[:i]
	s.buf = s.buf[i+1:]
	line := strings.TrimRight(string(raw), "\r")
	return strings.ToValidUTF8(line, ""), true
}

// Close releases the underlying port.
func (s *Stream) Close() error {
	return s.r.Close()
}
