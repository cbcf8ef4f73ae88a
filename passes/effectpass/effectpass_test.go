package effectpass_test

import (
	"bytes"
	"testing"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/mir"
	"github.com/BarrensZeppelin/effects/passes/effectpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestAnalyzer(t *testing.T) {
	var buf bytes.Buffer
	sess := effects.NewSession(effects.Options{Sink: effects.NewWriterSink(&buf)})

	results := analysistest.Run(t, analysistest.TestData(), effectpass.New(sess), "a")
	require.Len(t, results, 1)

	res, ok := results[0].Result.([]*effects.Result)
	require.True(t, ok)
	require.Len(t, res, 2)
	assert.Equal(t, "a.straight", res[0].Function)
	assert.Equal(t, "a.branch", res[1].Function)

	// Every call ends a block: cond, sink(1), sink(2) and sink(3).
	branch := res[1]
	assert.Len(t, branch.Blocks, 8)
	first, _ := branch.ID(branch.Blocks[0])
	assert.Equal(t, effects.EffectID(2), first, "ids continue after a.straight")

	records, err := effects.ParseLog(&buf)
	require.NoError(t, err)
	require.NoError(t, effects.CheckLog(records))

	calls := 0
	for _, r := range records {
		if r.Kind == effects.CallEdge {
			calls++
		}
	}
	assert.Equal(t, 5, calls)

	// The session belongs to the caller and is still open after the run.
	next, err := sess.Analyze(&mir.Body{Name: "after", Blocks: []*mir.BasicBlock{
		{Terminator: mir.Return{}},
	}})
	require.NoError(t, err)
	_, ok = next.ID(0)
	assert.True(t, ok)
	require.NoError(t, sess.Close())
}
