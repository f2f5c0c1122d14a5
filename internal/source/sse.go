package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/streamtrace/internal/stream"
	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
)

const maxEventSize = 1 << 20

var _ stream.Source[types.CompletionEvent] = (*SSE)(nil)

// DecodeError reports a data line that is not a valid completion chunk
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode chunk at line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SSE reads completion events from a server-sent event stream
type SSE struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	done    bool
}

// NewSSE reads events from r. If r is an io.Closer, Close closes it.
func NewSSE(r io.Reader) *SSE {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	s := &SSE{scanner: scanner}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Open opens a capture file, decompressing it when it ends in .gz
func Open(path string) (*SSE, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return NewSSE(f), nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip capture: %w", err)
	}
	s := NewSSE(zr)
	s.closer = multiCloser{zr, f}
	return s, nil
}

// Next returns the next event. io.EOF is returned after "[DONE]" or at the
// end of the input. Comments, blank lines and non-data fields are skipped.
func (s *SSE) Next() (types.CompletionEvent, error) {
	var event types.CompletionEvent
	if s.done {
		return event, io.EOF
	}

	for s.scanner.Scan() {
		s.line++
		line := s.scanner.Bytes()

		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if string(data) == "[DONE]" {
			s.done = true
			return event, io.EOF
		}

		// The scanner reuses its buffer, so decode from a copy
		if err := sonic.UnmarshalString(string(data), &event.Data); err != nil {
			return event, &DecodeError{Line: s.line, Err: err}
		}
		return event, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return event, fmt.Errorf("read event stream: %w", err)
	}
	return event, io.EOF
}

// Close releases the underlying reader
func (s *SSE) Close() error {
	s.done = true
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
