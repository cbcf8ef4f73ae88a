package effects

import (
	"bytes"
	"fmt"
	"log"
	"sync"

	"github.com/BarrensZeppelin/effects/mir"
)

type Options struct {
	// Sink receives the constraint log. Defaults to a FileSink writing to
	// DefaultLogPath.
	Sink Sink

	Propagation Propagation

	// Verbose enables an informational log line per analysed function and
	// debug output of the propagation.
	Verbose bool
}

// Session owns the state shared by the analyses of one run: the EffectID
// counter and the constraint log. A Session is safe for concurrent use; the
// analyses of concurrent callers are serialised so that EffectIDs strictly
// increase and each function's records are contiguous in the log.
type Session struct {
	mu sync.Mutex

	next        EffectID
	sink        Sink
	propagation Propagation
	verbose     bool
	closed      bool
}

func NewSession(opts Options) *Session {
	sink := opts.Sink
	if sink == nil {
		sink = NewFileSink(DefaultLogPath, false)
	}

	return &Session{
		sink:        sink,
		propagation: opts.Propagation,
		verbose:     opts.Verbose,
	}
}

func (s *Session) debugf(format string, args ...any) {
	if s.verbose {
		log.Output(2, fmt.Sprintf(format, args...))
	}
}

// NextID returns the EffectID the next discovered block will receive.
func (s *Session) NextID() EffectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Analyze numbers the blocks of body, computes their prior and future sets
// and appends the function's constraints to the log.
//
// If the log cannot be opened the function is skipped and an error wrapping
// ErrSinkUnavailable is returned. If the body contains a construct the
// emitter cannot render, an error wrapping ErrUnsupportedConstruct is
// returned and nothing is written. In both cases the session remains usable.
//
// A successor referring to a block outside the body violates the
// invariants of the CFG and panics.
func (s *Session) Analyze(body *mir.Body) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: session is closed", ErrSinkUnavailable)
	}

	if err := s.sink.Open(); err != nil {
		return nil, err
	}

	ctx := newContext(body)
	ctx.debugf = s.debugf
	ctx.number(&s.next)

	switch s.propagation {
	case SinglePass:
		ctx.ancestorsSinglePass()
		ctx.descendantsSinglePass()
	case FixedPoint:
		ctx.ancestorsFixedPoint()
		ctx.descendantsFixedPoint()
	default:
		log.Panicf("unknown propagation mode %v", s.propagation)
	}

	records, err := ctx.emit()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, r := range records {
		buf.WriteString(r.String())
		buf.WriteByte('\n')
	}
	if err := s.sink.Append(buf.Bytes()); err != nil {
		return nil, err
	}

	res := ctx.result(records)
	if s.verbose {
		log.Printf("%s: %d blocks, %d records", body.Name, len(res.Blocks), len(records))
	}
	return res, nil
}

// Close releases the log. Later calls to Analyze fail with
// ErrSinkUnavailable.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.sink.Close()
}
