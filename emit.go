package effects

import (
	"log"

	"github.com/BarrensZeppelin/effects/mir"
)

// emit renders the constraints of every numbered block. Blocks are visited
// in EffectID order and the records of a block are contiguous:
// scope open, statements, scope close, call edge, ancestor edges,
// descendant edges.
func (ctx *aContext) emit() ([]Record, error) {
	var records []Record
	for _, bb := range ctx.preorder {
		var err error
		if records, err = ctx.emitBlock(records, bb); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (ctx *aContext) emitBlock(records []Record, bb mir.BlockID) ([]Record, error) {
	id := ctx.id(bb)
	block := ctx.body.Blocks[bb]

	records = append(records, Record{Kind: ScopeOpen, Block: id})

	for _, stmt := range block.Statements {
		text, ok, err := ctx.renderStatement(bb, stmt)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, Record{Kind: Statement, Block: id, Text: text})
		}
	}

	records = append(records, Record{Kind: ScopeClose, Block: id})

	if callee, ok := ctx.callee(block.Terminator); ok {
		records = append(records, Record{Kind: CallEdge, Block: id, Text: callee})
	}

	for _, anc := range members(ctx.ancestors[bb]) {
		records = append(records, Record{Kind: AncestorEdge, Block: id, Other: anc})
	}
	for _, desc := range members(ctx.descendants[bb]) {
		records = append(records, Record{Kind: DescendantEdge, Block: id, Other: desc})
	}

	return records, nil
}

func (ctx *aContext) unsupported(bb mir.BlockID, construct string) error {
	return &UnsupportedError{Function: ctx.body.Name, Block: bb, Construct: construct}
}

// renderStatement renders an assignment as "place = operand". Statements
// without effect at this level are skipped (ok is false).
func (ctx *aContext) renderStatement(bb mir.BlockID, stmt mir.Statement) (text string, ok bool, err error) {
	switch stmt := stmt.(type) {
	case mir.Assign:
		rhs, err := ctx.renderRvalue(bb, stmt.Rvalue)
		if err != nil {
			return "", false, err
		}
		return stmt.Place.String() + " = " + rhs, true, nil

	case mir.StorageLive,
		mir.StorageDead,
		mir.AscribeUserType,
		mir.Retag,
		mir.FakeRead,
		mir.Coverage,
		mir.Nop,
		mir.SetDiscriminant,
		mir.Deinit,
		mir.Intrinsic:
		return "", false, nil

	default:
		log.Panicf("%s: %v: unexpected statement %T", ctx.body.Name, bb, stmt)
		return "", false, nil
	}
}

func (ctx *aContext) renderRvalue(bb mir.BlockID, rv mir.Rvalue) (string, error) {
	switch rv := rv.(type) {
	case mir.Use:
		return ctx.renderOperand(bb, rv.Operand), nil
	case mir.Repeat:
		return "", ctx.unsupported(bb, "repeat")
	case mir.Ref:
		return "", ctx.unsupported(bb, "reference to "+rv.Place.String())
	case mir.AddressOf:
		return "", ctx.unsupported(bb, "address of "+rv.Place.String())
	case mir.Len:
		return "", ctx.unsupported(bb, "length of "+rv.Place.String())
	case mir.Cast:
		return "", ctx.unsupported(bb, "cast to "+rv.Type)
	case mir.BinaryOp:
		return "", ctx.unsupported(bb, "binary operator "+rv.Op)
	case mir.UnaryOp:
		return "", ctx.unsupported(bb, "unary operator "+rv.Op)
	case mir.Discriminant:
		return "", ctx.unsupported(bb, "discriminant of "+rv.Place.String())
	case mir.Aggregate:
		return "", ctx.unsupported(bb, "aggregate "+rv.Kind)
	case mir.ShallowInitBox:
		return "", ctx.unsupported(bb, "box initialisation")
	case mir.CopyForDeref:
		return "", ctx.unsupported(bb, "copy for deref of "+rv.Place.String())
	case mir.NullaryOp:
		return "", ctx.unsupported(bb, "nullary operator "+rv.Op)
	case mir.ThreadLocalRef:
		return "", ctx.unsupported(bb, "thread local "+rv.Name)
	default:
		log.Panicf("%s: %v: unexpected rvalue %T", ctx.body.Name, bb, rv)
		return "", nil
	}
}

func (ctx *aContext) renderOperand(bb mir.BlockID, op mir.Operand) string {
	switch op := op.(type) {
	case mir.Copy:
		return op.Place.String()
	case mir.Move:
		return op.Place.String()
	case mir.Const:
		return op.Constant.String()
	default:
		log.Panicf("%s: %v: unexpected operand %T", ctx.body.Name, bb, op)
		return ""
	}
}

// callee returns the rendered callee if term is a call. Other terminators
// only contribute their successor edges.
func (ctx *aContext) callee(term mir.Terminator) (string, bool) {
	switch term := term.(type) {
	case mir.Call:
		return mir.Callee(term.Func), true

	case mir.Goto,
		mir.SwitchInt,
		mir.Drop,
		mir.Return,
		mir.Assert,
		mir.Unreachable,
		mir.Resume,
		mir.Abort,
		mir.Yield,
		mir.GeneratorDrop,
		mir.FalseEdge,
		mir.FalseUnwind,
		mir.InlineAsm:
		return "", false

	default:
		log.Panicf("%s: unexpected terminator %T", ctx.body.Name, term)
		return "", false
	}
}
