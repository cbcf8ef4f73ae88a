package effects

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultLogPath is where the constraint log is written unless configured
// otherwise.
const DefaultLogPath = "effects.log"

// Sink receives the rendered constraints of one function at a time.
type Sink interface {
	// Open prepares the sink for writing. It is called before every
	// function is analysed and must be cheap once the sink is open.
	Open() error
	// Append writes p at the end of the log. A failed Append must not leave
	// a partial record behind where the sink can avoid it.
	Append(p []byte) error
	Close() error
}

// FileSink writes the log to a file that is opened on first use.
// The first open creates or truncates the file, unless the sink is shared
// with other processes of the same run, in which case every open appends.
// Opening again after Close appends.
type FileSink struct {
	Path string
	// Shared makes the first open append instead of truncate.
	Shared bool

	mu     sync.Mutex
	file   *os.File
	opened bool
}

// NewFileSink returns a sink writing to path.
func NewFileSink(path string, shared bool) *FileSink {
	return &FileSink{Path: path, Shared: shared}
}

func (s *FileSink) open() error {
	if s.file != nil {
		return nil
	}

	flags := os.O_WRONLY | os.O_CREATE
	if s.opened || s.Shared {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(s.Path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}

	s.file, s.opened = f, true
	return nil
}

func (s *FileSink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open()
}

func (s *FileSink) Append(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.file.Write(p); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSinkUnavailable, s.Path, err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	return err
}

// WriterSink adapts an io.Writer. Close closes the writer if it is an
// io.Closer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Open() error { return nil }

func (s *WriterSink) Append(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(p); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	return nil
}

func (s *WriterSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
