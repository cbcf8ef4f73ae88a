package mir

import (
	"fmt"
	"strings"

	"github.com/BarrensZeppelin/effects/internal/slices"
)

type ttag struct{}

func (ttag) terminatorTag() {}

// Terminator ends a basic block and determines its successors.
type Terminator interface {
	terminatorTag()
	// Successors lists the target blocks in a fixed order. Absent optional
	// targets are omitted.
	Successors() []BlockID
	fmt.Stringer
}

func targets(ids ...BlockID) []BlockID {
	var res []BlockID
	for _, id := range ids {
		if id != NoBlock {
			res = append(res, id)
		}
	}
	return res
}

type Goto struct {
	ttag
	Target BlockID
}

// SwitchInt branches on Discr. Targets[i] is taken when Discr equals
// Values[i]; the final target (Targets[len(Values)]) is the otherwise branch.
type SwitchInt struct {
	ttag
	Discr   Operand
	Values  []string
	Targets []BlockID
}

type Drop struct {
	ttag
	Place  Place
	Target BlockID
	Unwind BlockID
}

type Return struct{ ttag }

type Assert struct {
	ttag
	Cond     Operand
	Expected bool
	Target   BlockID
	Cleanup  BlockID
}

type Unreachable struct{ ttag }

// Resume continues unwinding.
type Resume struct{ ttag }

type Abort struct{ ttag }

// Call invokes Func and continues at Target (NoBlock if the callee
// diverges). Cleanup is the unwind edge, if any.
type Call struct {
	ttag
	Func        Operand
	Args        []Operand
	Destination Place
	Target      BlockID
	Cleanup     BlockID
}

type Yield struct {
	ttag
	Value  Operand
	Resume BlockID
	Drop   BlockID
}

type GeneratorDrop struct{ ttag }

// FalseEdge behaves like a goto to Real; Imaginary is a successor only for
// the purposes of analysis.
type FalseEdge struct {
	ttag
	Real      BlockID
	Imaginary BlockID
}

type FalseUnwind struct {
	ttag
	Real   BlockID
	Unwind BlockID
}

type InlineAsm struct {
	ttag
	Template    string
	Destination BlockID
	Cleanup     BlockID
}

func (t Goto) Successors() []BlockID {
	return targets(t.Target)
}

func (t SwitchInt) Successors() []BlockID {
	return targets(t.Targets...)
}

func (t Drop) Successors() []BlockID {
	return targets(t.Target, t.Unwind)
}

func (Return) Successors() []BlockID {
	return nil
}

func (t Assert) Successors() []BlockID {
	return targets(t.Target, t.Cleanup)
}

func (Unreachable) Successors() []BlockID {
	return nil
}

func (Resume) Successors() []BlockID {
	return nil
}

func (Abort) Successors() []BlockID {
	return nil
}

func (t Call) Successors() []BlockID {
	return targets(t.Target, t.Cleanup)
}

func (t Yield) Successors() []BlockID {
	return targets(t.Resume, t.Drop)
}

func (GeneratorDrop) Successors() []BlockID {
	return nil
}

func (t FalseEdge) Successors() []BlockID {
	return targets(t.Real, t.Imaginary)
}

func (t FalseUnwind) Successors() []BlockID {
	return targets(t.Real, t.Unwind)
}

func (t InlineAsm) Successors() []BlockID {
	return targets(t.Destination, t.Cleanup)
}

func (t Goto) String() string { return "goto -> " + t.Target.String() }

func (t SwitchInt) String() string {
	arms := make([]string, 0, len(t.Targets))
	for i, target := range t.Targets {
		if i < len(t.Values) {
			arms = append(arms, fmt.Sprintf("%s: %v", t.Values[i], target))
		} else {
			arms = append(arms, fmt.Sprintf("otherwise: %v", target))
		}
	}
	return fmt.Sprintf("switchInt(%v) -> [%s]", t.Discr, strings.Join(arms, ", "))
}

func (t Drop) String() string {
	return fmt.Sprintf("drop(%v) -> %v", t.Place, t.Target)
}

func (Return) String() string {
	return "return"
}

func (t Assert) String() string {
	return fmt.Sprintf("assert(%v == %t) -> %v", t.Cond, t.Expected, t.Target)
}

func (Unreachable) String() string {
	return "unreachable"
}

func (Resume) String() string {
	return "resume"
}

func (Abort) String() string {
	return "abort"
}

func (t Yield) String() string {
	return fmt.Sprintf("yield(%v) -> %v", t.Value, t.Resume)
}

func (GeneratorDrop) String() string {
	return "generator_drop"
}

func (t FalseEdge) String() string {
	return fmt.Sprintf("falseEdge -> [real: %v, imaginary: %v]", t.Real, t.Imaginary)
}

func (t FalseUnwind) String() string {
	return fmt.Sprintf("falseUnwind -> [real: %v, unwind: %v]", t.Real, t.Unwind)
}

func (t InlineAsm) String() string {
	return fmt.Sprintf("asm!(%q) -> %v", t.Template, t.Destination)
}

func (t Call) String() string {
	args := strings.Join(slices.Map(t.Args, Operand.String), ", ")
	return fmt.Sprintf("%v = %s(%s) -> %v", t.Destination, Callee(t.Func), args, t.Target)
}

// Callee renders the function operand of a call: a constant callee renders
// as its bare literal, a place as the place.
func Callee(op Operand) string {
	if c, ok := op.(Const); ok {
		return c.Constant.Literal
	}
	return op.String()
}
