package effects

import (
	"github.com/BarrensZeppelin/effects/internal/slices"
	"github.com/BarrensZeppelin/effects/mir"
)

// Result holds the relations computed for one function.
type Result struct {
	Function string

	// Blocks lists the reachable blocks in the order they received their
	// EffectIDs.
	Blocks []mir.BlockID
	IDs    map[mir.BlockID]EffectID

	// Ancestors and Descendants hold the prior and future sets of each
	// block in ascending order.
	Ancestors   map[mir.BlockID][]EffectID
	Descendants map[mir.BlockID][]EffectID

	// Records are the records appended to the log for this function.
	Records []Record
}

// ID returns the EffectID of bb, if bb was reachable.
func (r *Result) ID(bb mir.BlockID) (EffectID, bool) {
	id, ok := r.IDs[bb]
	return id, ok
}

// Block returns the block numbered id.
func (r *Result) Block(id EffectID) (mir.BlockID, bool) {
	for _, bb := range r.Blocks {
		if r.IDs[bb] == id {
			return bb, true
		}
	}
	return mir.NoBlock, false
}

func (r *Result) blocksOf(ids []EffectID) []mir.BlockID {
	return slices.Map(ids, func(id EffectID) mir.BlockID {
		bb, _ := r.Block(id)
		return bb
	})
}

// AncestorBlocks returns the blocks in the prior set of bb.
func (r *Result) AncestorBlocks(bb mir.BlockID) []mir.BlockID {
	return r.blocksOf(r.Ancestors[bb])
}

// DescendantBlocks returns the blocks in the future set of bb.
func (r *Result) DescendantBlocks(bb mir.BlockID) []mir.BlockID {
	return r.blocksOf(r.Descendants[bb])
}
