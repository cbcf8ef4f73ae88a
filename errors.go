package effects

import (
	"errors"
	"fmt"

	"github.com/BarrensZeppelin/effects/mir"
)

var (
	// ErrSinkUnavailable is returned when the constraint log cannot be
	// opened or written. Nothing is written for the function being analysed.
	ErrSinkUnavailable = errors.New("constraint log unavailable")

	// ErrUnsupportedConstruct is returned when a function contains a
	// construct the emitter cannot render faithfully.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
)

// UnsupportedError describes the construct that stopped the analysis of a
// function. It matches ErrUnsupportedConstruct under errors.Is.
type UnsupportedError struct {
	Function  string
	Block     mir.BlockID
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %v: %v: %s", e.Function, e.Block, ErrUnsupportedConstruct, e.Construct)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupportedConstruct }
