package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gotoBlock(target BlockID) *BasicBlock {
	return &BasicBlock{Terminator: Goto{Target: target}}
}

func switchBlock(targets ...BlockID) *BasicBlock {
	return &BasicBlock{Terminator: SwitchInt{
		Discr:   Copy{Place: Local("c")},
		Values:  make([]string, len(targets)-1),
		Targets: targets,
	}}
}

func returnBlock() *BasicBlock { return &BasicBlock{Terminator: Return{}} }

func TestPreorder(t *testing.T) {
	// bb0 -> {bb1, bb2}, bb1 -> bb3, bb2 -> bb3, bb4 is dead.
	body := &Body{Name: "diamond", Blocks: []*BasicBlock{
		switchBlock(1, 2),
		gotoBlock(3),
		gotoBlock(3),
		returnBlock(),
		gotoBlock(3),
	}}

	assert.Equal(t, []BlockID{0, 1, 3, 2}, Preorder(body))
	assert.Equal(t, []BlockID{3, 1, 2, 0}, Postorder(body))

	preds := Predecessors(body, Preorder(body))
	assert.Equal(t, []BlockID{1, 2}, preds[3])
	assert.Equal(t, []BlockID{0}, preds[1])
	assert.Empty(t, preds[0])
}

func TestTraversalOfLoop(t *testing.T) {
	// bb0 -> bb1 -> {bb2, bb3}, bb2 -> bb1
	body := &Body{Name: "loop", Blocks: []*BasicBlock{
		gotoBlock(1),
		switchBlock(2, 3),
		gotoBlock(1),
		returnBlock(),
	}}

	assert.Equal(t, []BlockID{0, 1, 2, 3}, Preorder(body))
	assert.Equal(t, []BlockID{2, 3, 1, 0}, Postorder(body))
	assert.Equal(t, []BlockID{0, 2}, Predecessors(body, Preorder(body))[1])
}

func TestPredecessorsDeduplicates(t *testing.T) {
	body := &Body{Name: "dup", Blocks: []*BasicBlock{
		switchBlock(1, 1, 1),
		returnBlock(),
	}}

	assert.Equal(t, []BlockID{0}, Predecessors(body, Preorder(body))[1])
}

func TestDeepChain(t *testing.T) {
	const n = 200000
	body := &Body{Name: "chain", Blocks: make([]*BasicBlock, n)}
	for i := 0; i < n-1; i++ {
		body.Blocks[i] = gotoBlock(BlockID(i + 1))
	}
	body.Blocks[n-1] = returnBlock()

	pre := Preorder(body)
	post := Postorder(body)
	require.Len(t, pre, n)
	require.Len(t, post, n)
	assert.Equal(t, BlockID(n-1), pre[n-1])
	assert.Equal(t, BlockID(n-1), post[0])
	assert.Equal(t, Entry, post[n-1])
}

func TestEmptyBody(t *testing.T) {
	body := &Body{Name: "empty"}
	assert.Empty(t, Preorder(body))
	assert.Empty(t, Postorder(body))
}

func TestInvalidSuccessorPanics(t *testing.T) {
	for name, body := range map[string]*Body{
		"out of range": {Name: "f", Blocks: []*BasicBlock{gotoBlock(3)}},
		"negative":     {Name: "f", Blocks: []*BasicBlock{gotoBlock(-2)}},
		"no terminator": {Name: "f", Blocks: []*BasicBlock{
			gotoBlock(1),
			{},
		}},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, func() { Preorder(body) })
			assert.Panics(t, func() { Postorder(body) })
		})
	}
}

func TestOptionalTargetsAreOmitted(t *testing.T) {
	call := Call{
		Func:    Const{Constant: Constant{Literal: "panic"}},
		Target:  NoBlock,
		Cleanup: NoBlock,
	}
	assert.Empty(t, call.Successors())

	drop := Drop{Place: Local("x"), Target: 1, Unwind: NoBlock}
	assert.Equal(t, []BlockID{1}, drop.Successors())

	edge := FalseEdge{Real: 2, Imaginary: 5}
	assert.Equal(t, []BlockID{2, 5}, edge.Successors())
}
