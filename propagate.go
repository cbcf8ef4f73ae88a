package effects

import (
	"github.com/BarrensZeppelin/effects/internal/queue"
	"github.com/BarrensZeppelin/effects/mir"
	"golang.org/x/tools/container/intsets"
)

// priorOf returns the set a block hands to its successors: its own
// ancestors and itself.
func (ctx *aContext) priorOf(bb mir.BlockID) *intsets.Sparse {
	var prior intsets.Sparse
	prior.Copy(ctx.ancestorSet(bb))
	prior.Insert(int(ctx.id(bb)))
	return &prior
}

// ancestorsSinglePass extends the ancestors of every successor of a block,
// visiting blocks once in discovery order. Ancestors that reach a block
// after it has been visited are not passed on to its successors.
func (ctx *aContext) ancestorsSinglePass() {
	for _, bb := range ctx.preorder {
		prior := ctx.priorOf(bb)
		for _, succ := range ctx.successors(bb) {
			ctx.ancestorSet(succ).UnionWith(prior)
		}
	}
}

// ancestorsFixedPoint applies the same transfer as ancestorsSinglePass but
// revisits a block whenever its ancestor set grows.
func (ctx *aContext) ancestorsFixedPoint() {
	var q queue.Queue[mir.BlockID]
	for _, bb := range ctx.preorder {
		q.Push(bb)
	}

	rounds := 0
	for !q.Empty() {
		bb := q.Pop()
		rounds++

		prior := ctx.priorOf(bb)
		for _, succ := range ctx.successors(bb) {
			if ctx.ancestorSet(succ).UnionWith(prior) {
				q.Push(succ)
			}
		}
	}

	ctx.debugf("%s: ancestors stable after %d visits", ctx.body.Name, rounds)
}

// extendDescendants adds every successor of bb and the successor's
// descendants to the descendants of bb. It reports whether the set grew.
func (ctx *aContext) extendDescendants(bb mir.BlockID) bool {
	desc := ctx.descendantSet(bb)
	changed := false
	for _, succ := range ctx.successors(bb) {
		if desc.Insert(int(ctx.id(succ))) {
			changed = true
		}
		if desc.UnionWith(ctx.descendantSet(succ)) {
			changed = true
		}
	}
	return changed
}

// descendantsSinglePass visits the blocks once in postorder. The
// descendants of a successor are final when it is consumed unless the edge
// closes a cycle.
func (ctx *aContext) descendantsSinglePass() {
	for _, bb := range mir.Postorder(ctx.body) {
		ctx.extendDescendants(bb)
	}
}

// descendantsFixedPoint starts from the postorder and requeues the
// predecessors of a block whenever its descendant set grows.
func (ctx *aContext) descendantsFixedPoint() {
	postorder := mir.Postorder(ctx.body)
	preds := mir.Predecessors(ctx.body, postorder)

	var q queue.Queue[mir.BlockID]
	for _, bb := range postorder {
		q.Push(bb)
	}

	rounds := 0
	for !q.Empty() {
		bb := q.Pop()
		rounds++

		if ctx.extendDescendants(bb) {
			for _, pred := range preds[bb] {
				q.Push(pred)
			}
		}
	}

	ctx.debugf("%s: descendants stable after %d visits", ctx.body.Name, rounds)
}
