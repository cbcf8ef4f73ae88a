package mir

import (
	"log"

	"github.com/BarrensZeppelin/effects/internal/maps"
)

// successors returns the successors of block id, checking that every one of
// them exists in the body.
func (b *Body) successors(id BlockID) []BlockID {
	block := b.Block(id)
	if block == nil {
		log.Panicf("%s: reference to unknown block %v", b.Name, id)
	}
	if block.Terminator == nil {
		log.Panicf("%s: block %v has no terminator", b.Name, id)
	}

	succs := block.Terminator.Successors()
	for _, succ := range succs {
		if b.Block(succ) == nil {
			log.Panicf("%s: %v has successor %v outside the body", b.Name, id, succ)
		}
	}
	return succs
}

// Preorder returns the blocks reachable from Entry in depth-first preorder.
// A block is listed before any of its not yet visited successors, and
// successors are explored in the order the terminator lists them.
// Blocks that are not reachable are omitted.
func Preorder(b *Body) []BlockID {
	if len(b.Blocks) == 0 {
		return nil
	}

	visited := make([]bool, len(b.Blocks))
	var order []BlockID
	stack := []BlockID{Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}

		visited[id] = true
		order = append(order, id)

		succs := b.successors(id)
		// Push in reverse so the first successor is explored first.
		for i := len(succs) - 1; i >= 0; i-- {
			if !visited[succs[i]] {
				stack = append(stack, succs[i])
			}
		}
	}

	return order
}

// Postorder returns the blocks reachable from Entry in depth-first
// postorder: a block is listed after every block discovered below it.
func Postorder(b *Body) []BlockID {
	if len(b.Blocks) == 0 {
		return nil
	}

	type frame struct {
		id    BlockID
		succs []BlockID
		next  int
	}

	visited := make([]bool, len(b.Blocks))
	var order []BlockID

	visited[Entry] = true
	stack := []frame{{id: Entry, succs: b.successors(Entry)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.succs) {
			succ := top.succs[top.next]
			top.next++
			if !visited[succ] {
				visited[succ] = true
				stack = append(stack, frame{id: succ, succs: b.successors(succ)})
			}
			continue
		}

		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}

	return order
}

// Predecessors maps each of the given blocks to the blocks among them that
// name it as a successor. A block reached twice from the same predecessor
// lists that predecessor once.
func Predecessors(b *Body, blocks []BlockID) map[BlockID][]BlockID {
	within := maps.FromKeys(blocks)

	preds := make(map[BlockID][]BlockID, len(blocks))
	for _, id := range blocks {
		seen := map[BlockID]bool{}
		for _, succ := range b.successors(id) {
			if _, ok := within[succ]; ok && !seen[succ] {
				seen[succ] = true
				preds[succ] = append(preds[succ], id)
			}
		}
	}
	return preds
}
