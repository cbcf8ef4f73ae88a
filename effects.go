// Package effects generates contextual effect constraints for the control
// flow graph of a function.
//
// Every reachable basic block is given an EffectID that is unique for the
// lifetime of a Session. For each block the analysis computes the blocks
// that may execute before it (its prior, or α, set) and the blocks that may
// execute after it (its future, or ω, set), and writes a textual constraint
// log:
//
//	ε_4 {
//	    x = const 1:int
//	}
//	ε_4 <- ε[fmt.Println]; α[fmt.Println] <- α_4; ω[fmt.Println] <- ω_4
//	α_4 <- α_3
//	ω_4 <- ω_5
package effects

import (
	"fmt"
	"log"
	"strconv"
)

func init() {
	log.SetFlags(log.Ltime | log.Lshortfile)
}

// EffectID identifies the effect scope of one block's execution.
type EffectID uint64

func (id EffectID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Propagation selects how ancestor and descendant sets are computed.
type Propagation int

const (
	// FixedPoint repeats propagation until no set grows. The relations are
	// exact reachability, also for cyclic control flow.
	FixedPoint Propagation = iota
	// SinglePass visits every block once (ancestors in preorder,
	// descendants in postorder). Exact for acyclic control flow only: a back
	// edge can leave sets incomplete.
	SinglePass
)

func (p Propagation) String() string {
	switch p {
	case FixedPoint:
		return "fixpoint"
	case SinglePass:
		return "single-pass"
	default:
		return fmt.Sprintf("Propagation(%d)", int(p))
	}
}

// ParsePropagation is the inverse of Propagation.String.
func ParsePropagation(s string) (Propagation, error) {
	switch s {
	case "fixpoint", "":
		return FixedPoint, nil
	case "single-pass":
		return SinglePass, nil
	default:
		return 0, fmt.Errorf("unknown propagation mode %q (use fixpoint or single-pass)", s)
	}
}
