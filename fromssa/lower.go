// Package fromssa lowers functions in golang.org/x/tools/go/ssa form to the
// control-flow graphs analysed by package effects.
//
// Calls end a block, as they do in a compiler's mid-level IR: an SSA block
// containing n calls becomes n+1 consecutive blocks, each call terminating
// one of them and continuing in the next. Instructions without a faithful
// rendering are either lowered to the matching unsupported rvalue, so that
// the effect analysis rejects them, or rejected here with an error wrapping
// effects.ErrUnsupportedConstruct.
package fromssa

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"
	"go/types"
	"strconv"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/internal/slices"
	"github.com/BarrensZeppelin/effects/mir"
	"golang.org/x/tools/go/ssa"
)

var ErrNoBody = errors.New("function has no body")

// ReturnPlace is the local results are assigned to before a return.
const ReturnPlace = "ret"

type lowerer struct {
	fn   *ssa.Function
	pkg  *types.Package
	qual types.Qualifier

	body *mir.Body
	// First mir block of every ssa block.
	start []mir.BlockID
}

// Lower translates fn. Functions without blocks (external or not yet built)
// yield ErrNoBody.
func Lower(fn *ssa.Function) (*mir.Body, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("%v: %w", fn, ErrNoBody)
	}

	l := &lowerer{
		fn:   fn,
		body: &mir.Body{Name: fn.String()},
	}
	if fn.Pkg != nil {
		l.pkg = fn.Pkg.Pkg
		l.qual = types.RelativeTo(l.pkg)
	}

	next := 0
	l.start = make([]mir.BlockID, len(fn.Blocks))
	for _, b := range fn.Blocks {
		l.start[b.Index] = mir.BlockID(next)
		next += 1 + len(slices.Filter(b.Instrs, endsBlock))
	}
	l.body.Blocks = make([]*mir.BasicBlock, next)

	for _, b := range fn.Blocks {
		if err := l.lowerBlock(b); err != nil {
			return nil, err
		}
	}

	return l.body, nil
}

func isLen(call *ssa.Call) bool {
	b, ok := call.Call.Value.(*ssa.Builtin)
	return ok && b.Name() == "len"
}

// endsBlock reports whether instr is lowered to a Call terminator in the
// middle of an ssa block.
func endsBlock(instr ssa.Instruction) bool {
	call, ok := instr.(*ssa.Call)
	return ok && !isLen(call)
}

func (l *lowerer) unsupported(bb mir.BlockID, construct string) error {
	return &effects.UnsupportedError{Function: l.body.Name, Block: bb, Construct: construct}
}

func (l *lowerer) lowerBlock(b *ssa.BasicBlock) error {
	id := l.start[b.Index]
	cur := &mir.BasicBlock{}

	for _, instr := range b.Instrs {
		switch instr := instr.(type) {
		case *ssa.Call:
			if isLen(instr) {
				cur.Statements = append(cur.Statements, mir.Assign{
					Place:  mir.Local(instr.Name()),
					Rvalue: mir.Len{Place: l.place(instr.Call.Args[0])},
				})
				continue
			}

			cur.Terminator = l.call(instr, id+1)
			l.body.Blocks[id] = cur
			id, cur = id+1, &mir.BasicBlock{}

		case *ssa.Jump:
			cur.Terminator = mir.Goto{Target: l.start[b.Succs[0].Index]}

		case *ssa.If:
			cur.Terminator = mir.SwitchInt{
				Discr:   l.operand(instr.Cond),
				Values:  []string{"true"},
				Targets: []mir.BlockID{l.start[b.Succs[0].Index], l.start[b.Succs[1].Index]},
			}

		case *ssa.Return:
			for i, res := range instr.Results {
				place := mir.Local(ReturnPlace)
				if len(instr.Results) > 1 {
					place = place.Field(strconv.Itoa(i))
				}
				cur.Statements = append(cur.Statements, mir.Assign{
					Place:  place,
					Rvalue: mir.Use{Operand: l.operand(res)},
				})
			}
			cur.Terminator = mir.Return{}

		case *ssa.Panic:
			cur.Terminator = mir.Call{
				Func:    mir.Const{Constant: mir.Constant{Literal: "panic"}},
				Args:    []mir.Operand{l.operand(instr.X)},
				Target:  mir.NoBlock,
				Cleanup: mir.NoBlock,
			}

		default:
			stmt, err := l.statement(id, instr)
			if err != nil {
				return err
			}
			cur.Statements = append(cur.Statements, stmt)
		}
	}

	l.body.Blocks[id] = cur
	return nil
}

func (l *lowerer) call(call *ssa.Call, next mir.BlockID) mir.Call {
	common := call.Common()

	var fun mir.Operand
	if common.IsInvoke() {
		fun = mir.Copy{Place: l.place(common.Value).Field(common.Method.Name())}
	} else {
		fun = l.operand(common.Value)
	}

	return mir.Call{
		Func:        fun,
		Args:        slices.Map(common.Args, l.operand),
		Destination: mir.Local(call.Name()),
		Target:      next,
		Cleanup:     mir.NoBlock,
	}
}

func (l *lowerer) typeString(t types.Type) string {
	return types.TypeString(t, l.qual)
}

func (l *lowerer) constant(c *ssa.Const) mir.Constant {
	var lit string
	switch {
	case c.Value == nil && c.IsNil():
		lit = "nil"
	case c.Value == nil:
		lit = "zero"
	case c.Value.Kind() == constant.String:
		lit = c.Value.ExactString()
	default:
		lit = c.Value.String()
	}
	return mir.Constant{Literal: lit, Type: l.typeString(c.Type())}
}

func (l *lowerer) operand(v ssa.Value) mir.Operand {
	switch v := v.(type) {
	case *ssa.Const:
		return mir.Const{Constant: l.constant(v)}
	case *ssa.Function:
		return mir.Const{Constant: mir.Constant{Literal: v.RelString(l.pkg)}}
	case *ssa.Builtin:
		return mir.Const{Constant: mir.Constant{Literal: v.Name()}}
	default:
		return mir.Copy{Place: l.place(v)}
	}
}

func (l *lowerer) place(v ssa.Value) mir.Place {
	switch v := v.(type) {
	case *ssa.Global:
		return mir.Local(v.RelString(l.pkg))
	case *ssa.Function:
		return mir.Local(v.RelString(l.pkg))
	default:
		return mir.Local(v.Name())
	}
}

// fieldName resolves field i of the struct type t (or of the struct t
// points to).
func fieldName(t types.Type, i int) string {
	if ptr, ok := t.Underlying().(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if st, ok := t.Underlying().(*types.Struct); ok && i < st.NumFields() {
		return st.Field(i).Name()
	}
	return strconv.Itoa(i)
}

func (l *lowerer) assign(v ssa.Value, rv mir.Rvalue) mir.Statement {
	return mir.Assign{Place: mir.Local(v.Name()), Rvalue: rv}
}

func (l *lowerer) cast(v ssa.Value, x ssa.Value) mir.Statement {
	return l.assign(v, mir.Cast{Operand: l.operand(x), Type: l.typeString(v.Type())})
}

func (l *lowerer) aggregate(v ssa.Value, kind string, ops ...ssa.Value) mir.Statement {
	return l.assign(v, mir.Aggregate{Kind: kind, Operands: slices.Map(ops, l.operand)})
}

func (l *lowerer) statement(bb mir.BlockID, instr ssa.Instruction) (mir.Statement, error) {
	switch instr := instr.(type) {
	case *ssa.DebugRef:
		return mir.FakeRead{Place: l.place(instr.X)}, nil

	case *ssa.RunDefers:
		return mir.Intrinsic{Name: "rundefers"}, nil

	case *ssa.Alloc:
		if !instr.Heap {
			return mir.StorageLive{Local: instr.Name()}, nil
		}
		elem := instr.Type().Underlying().(*types.Pointer).Elem()
		return l.assign(instr, mir.ShallowInitBox{Type: l.typeString(elem)}), nil

	case *ssa.Store:
		return mir.Assign{
			Place:  l.place(instr.Addr).Deref(),
			Rvalue: mir.Use{Operand: l.operand(instr.Val)},
		}, nil

	case *ssa.UnOp:
		if instr.Op == token.MUL {
			return l.assign(instr, mir.Use{Operand: mir.Copy{Place: l.place(instr.X).Deref()}}), nil
		}
		return l.assign(instr, mir.UnaryOp{Op: instr.Op.String(), X: l.operand(instr.X)}), nil

	case *ssa.BinOp:
		return l.assign(instr, mir.BinaryOp{
			Op: instr.Op.String(),
			X:  l.operand(instr.X),
			Y:  l.operand(instr.Y),
		}), nil

	case *ssa.Convert:
		return l.cast(instr, instr.X), nil
	case *ssa.ChangeType:
		return l.cast(instr, instr.X), nil
	case *ssa.ChangeInterface:
		return l.cast(instr, instr.X), nil
	case *ssa.MakeInterface:
		return l.cast(instr, instr.X), nil
	case *ssa.SliceToArrayPointer:
		return l.cast(instr, instr.X), nil
	case *ssa.TypeAssert:
		if instr.CommaOk {
			return nil, l.unsupported(bb, "comma-ok type assertion")
		}
		return l.cast(instr, instr.X), nil

	case *ssa.FieldAddr:
		name := fieldName(instr.X.Type(), instr.Field)
		return l.assign(instr, mir.Ref{Place: l.place(instr.X).Deref().Field(name), Mutable: true}), nil

	case *ssa.Field:
		name := fieldName(instr.X.Type(), instr.Field)
		return l.assign(instr, mir.Use{Operand: mir.Copy{Place: l.place(instr.X).Field(name)}}), nil

	case *ssa.IndexAddr:
		idx := l.operand(instr.Index).String()
		return l.assign(instr, mir.Ref{Place: l.place(instr.X).Index(idx), Mutable: true}), nil

	case *ssa.Index:
		idx := l.operand(instr.Index).String()
		return l.assign(instr, mir.Use{Operand: mir.Copy{Place: l.place(instr.X).Index(idx)}}), nil

	case *ssa.Lookup:
		if instr.CommaOk {
			return nil, l.unsupported(bb, "comma-ok lookup")
		}
		idx := l.operand(instr.Index).String()
		return l.assign(instr, mir.Use{Operand: mir.Copy{Place: l.place(instr.X).Index(idx)}}), nil

	case *ssa.MapUpdate:
		return mir.Assign{
			Place:  l.place(instr.Map).Index(l.operand(instr.Key).String()),
			Rvalue: mir.Use{Operand: l.operand(instr.Value)},
		}, nil

	case *ssa.Extract:
		field := l.place(instr.Tuple).Field(strconv.Itoa(instr.Index))
		return l.assign(instr, mir.Use{Operand: mir.Copy{Place: field}}), nil

	case *ssa.Slice:
		return l.assign(instr, mir.Ref{Place: l.place(instr.X)}), nil

	case *ssa.MakeClosure:
		return l.aggregate(instr, "closure "+instr.Fn.Name(), instr.Bindings...), nil
	case *ssa.MakeSlice:
		return l.aggregate(instr, "slice", instr.Len, instr.Cap), nil
	case *ssa.MakeMap:
		if instr.Reserve == nil {
			return l.aggregate(instr, "map"), nil
		}
		return l.aggregate(instr, "map", instr.Reserve), nil
	case *ssa.MakeChan:
		return l.aggregate(instr, "chan", instr.Size), nil

	case *ssa.Phi:
		return nil, l.unsupported(bb, "φ-node "+instr.Name())
	case *ssa.Select:
		return nil, l.unsupported(bb, "select")
	case *ssa.Send:
		return nil, l.unsupported(bb, "channel send")
	case *ssa.Go:
		return nil, l.unsupported(bb, "go statement")
	case *ssa.Defer:
		return nil, l.unsupported(bb, "defer statement")
	case *ssa.Range:
		return nil, l.unsupported(bb, "range")
	case *ssa.Next:
		return nil, l.unsupported(bb, "range iteration")

	default:
		return nil, l.unsupported(bb, fmt.Sprintf("instruction %T", instr))
	}
}
