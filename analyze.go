package effects

import (
	"log"

	"github.com/BarrensZeppelin/effects/mir"
	"golang.org/x/tools/container/intsets"
)

// aContext holds the state of the analysis of a single function.
type aContext struct {
	body *mir.Body

	// Reachable blocks in the order they were discovered.
	preorder []mir.BlockID
	ids      map[mir.BlockID]EffectID

	ancestors   map[mir.BlockID]*intsets.Sparse
	descendants map[mir.BlockID]*intsets.Sparse

	debugf func(format string, args ...any)
}

func newContext(body *mir.Body) *aContext {
	return &aContext{
		body:        body,
		ids:         make(map[mir.BlockID]EffectID),
		ancestors:   make(map[mir.BlockID]*intsets.Sparse),
		descendants: make(map[mir.BlockID]*intsets.Sparse),
		debugf:      func(string, ...any) {},
	}
}

// number walks the body in preorder and gives every newly discovered block
// the current value of the counter.
func (ctx *aContext) number(counter *EffectID) {
	ctx.preorder = mir.Preorder(ctx.body)
	for _, bb := range ctx.preorder {
		if _, seen := ctx.ids[bb]; seen {
			log.Panicf("%s: %v discovered twice", ctx.body.Name, bb)
		}

		ctx.ids[bb] = *counter
		ctx.debugf("%s: %v -> ε_%v", ctx.body.Name, bb, *counter)
		*counter++
	}
}

func (ctx *aContext) id(bb mir.BlockID) EffectID {
	id, ok := ctx.ids[bb]
	if !ok {
		log.Panicf("%s: %v was not numbered", ctx.body.Name, bb)
	}
	return id
}

func (ctx *aContext) successors(bb mir.BlockID) []mir.BlockID {
	return ctx.body.Blocks[bb].Terminator.Successors()
}

func setOf(m map[mir.BlockID]*intsets.Sparse, bb mir.BlockID) *intsets.Sparse {
	s, ok := m[bb]
	if !ok {
		s = new(intsets.Sparse)
		m[bb] = s
	}
	return s
}

func (ctx *aContext) ancestorSet(bb mir.BlockID) *intsets.Sparse {
	return setOf(ctx.ancestors, bb)
}

func (ctx *aContext) descendantSet(bb mir.BlockID) *intsets.Sparse {
	return setOf(ctx.descendants, bb)
}

// members returns the EffectIDs of s in ascending order.
func members(s *intsets.Sparse) []EffectID {
	if s == nil {
		return nil
	}

	ints := s.AppendTo(nil)
	res := make([]EffectID, len(ints))
	for i, x := range ints {
		res[i] = EffectID(x)
	}
	return res
}

func (ctx *aContext) result(records []Record) *Result {
	res := &Result{
		Function:    ctx.body.Name,
		Blocks:      ctx.preorder,
		IDs:         ctx.ids,
		Ancestors:   make(map[mir.BlockID][]EffectID, len(ctx.preorder)),
		Descendants: make(map[mir.BlockID][]EffectID, len(ctx.preorder)),
		Records:     records,
	}

	for _, bb := range ctx.preorder {
		res.Ancestors[bb] = members(ctx.ancestors[bb])
		res.Descendants[bb] = members(ctx.descendants[bb])
	}
	return res
}
