package serialport

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesSignature(t *testing.T) {
	cases := []struct {
		name   string
		device string
		desc   string
		want   bool
	}{
		{"ch340 clone", "COM5", "USB-SERIAL CH340", true},
		{"ftdi by description", "COM3", "FT232R USB UART", true},
		{"linux acm device", "/dev/ttyACM0", "", true},
		{"linux usb serial", "/dev/ttyUSB1", "", true},
		{"arduino branded", "COM7", "Arduino Uno", true},
		{"case insensitive", "com4", "usb serial device", true},
		{"builtin uart", "/dev/ttyS0", "", false},
		{"bluetooth port", "/dev/cu.Bluetooth-Incoming-Port", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchesSignature(tc.device, tc.desc))
		})
	}
}

// chunkReader feeds fixed chunks one Read call at a time, then behaves
// like a port with nothing to say (n=0, nil error on timeout).
type chunkReader struct {
	chunks [][]byte
	closed bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil // read timeout: no data
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func (r *chunkReader) Close() error {
	r.closed = true
	return nil
}

func TestReadLine_SplitsOnNewline(t *testing.T) {
	s := newStream(&chunkReader{chunks: [][]byte{[]byte("VOTE,1\nVOTE,2\n")}})

	line, ok, err := s.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "VOTE,1", line)

	line, ok, err = s.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "VOTE,2", line)

	_, ok, err = s.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok, "no third line buffered")
}

func TestReadLine_PartialLineAcrossReads(t *testing.T) {
	s := newStream(&chunkReader{chunks: [][]byte{
		[]byte("VO"),
		[]byte("TE,3\r\n"),
	}})

	_, ok, err := s.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok, "line incomplete after first chunk")

	line, ok, err := s.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "VOTE,3", line, "CR stripped")
}

func TestReadLine_DropsInvalidBytes(t *testing.T) {
	s := newStream(&chunkReader{chunks: [][]byte{
		{0xFF, 0xFE, 'R', 'E', 'A', 'D', 'Y', '\n'},
	}})

	line, ok, err := s.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "READY", line)
}

func TestReadLine_TimeoutYieldsNoLine(t *testing.T) {
	s := newStream(&chunkReader{})
	_, ok, err := s.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadLine_EOFIsNotAnError(t *testing.T) {
	s := newStream(io.NopCloser(&eofReader{}))
	_, ok, err := s.ReadLine()
	require.NoError(t, err)
	assert.False(t, ok)
}

type eofReader struct{}

func (eofReader) Read(p []byte) (int, error) { return 0, io.EOF }

func TestClose(t *testing.T) {
	r := &chunkReader{}
	s := newStream(r)
	require.NoError(t, s.Close())
	assert.True(t, r.closed)
}
