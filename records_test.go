package effects_test

import (
	"strings"
	"testing"

	"github.com/BarrensZeppelin/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	for _, rec := range []effects.Record{
		{Kind: effects.ScopeOpen, Block: 12},
		{Kind: effects.Statement, Text: "(*p).f = const \"a; b\":string"},
		{Kind: effects.CallEdge, Block: 3, Text: "fmt.Println"},
		// The callee contains the separators of the call record itself.
		{Kind: effects.CallEdge, Block: 40, Text: "m[k]; α[x] <- α_1"},
		{Kind: effects.AncestorEdge, Block: 7, Other: 2},
		{Kind: effects.DescendantEdge, Block: 2, Other: 7},
	} {
		t.Run(rec.String(), func(t *testing.T) {
			parsed, err := effects.ParseRecord(rec.String())
			require.NoError(t, err)
			assert.Equal(t, rec, parsed)
		})
	}
}

func TestParseRecordMalformed(t *testing.T) {
	for _, line := range []string{
		"ε_ {",
		"ε_x {",
		"ε_1 <- ε[f]; α[g] <- α_1; ω[f] <- ω_1",
		"ε_1 <- ε[f]; α[f] <- α_2; ω[f] <- ω_1",
		"α_1 <- ω_2",
		"α_1 <-α_2",
		"ω_-1 <- ω_2",
		"x = y",
		"{",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := effects.ParseRecord(line)
			assert.ErrorIs(t, err, effects.ErrMalformedRecord)
		})
	}
}

func TestParseLogAttributesScopes(t *testing.T) {
	log := `ε_4 {
    x = const 1:int
}

ε_4 <- ε[f]; α[f] <- α_4; ω[f] <- ω_4
ε_5 {
}
α_5 <- α_4
`
	records, err := effects.ParseLog(strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, []effects.Record{
		{Kind: effects.ScopeOpen, Block: 4},
		{Kind: effects.Statement, Block: 4, Text: "x = const 1:int"},
		{Kind: effects.ScopeClose, Block: 4},
		{Kind: effects.CallEdge, Block: 4, Text: "f"},
		{Kind: effects.ScopeOpen, Block: 5},
		{Kind: effects.ScopeClose, Block: 5},
		{Kind: effects.AncestorEdge, Block: 5, Other: 4},
	}, records)
	assert.NoError(t, effects.CheckLog(records))
}

func TestParseLogReportsLine(t *testing.T) {
	_, err := effects.ParseLog(strings.NewReader("ε_0 {\n}\nbogus\n"))
	require.ErrorIs(t, err, effects.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCheckLog(t *testing.T) {
	for name, tc := range map[string]struct {
		log string
		err string
	}{
		"nested scope": {
			log: "ε_0 {\nε_1 {\n}\n}\n",
			err: "opened inside",
		},
		"reopened scope": {
			log: "ε_0 {\n}\nε_0 {\n}\n",
			err: "opened twice",
		},
		"statement outside scope": {
			log: "ε_0 {\n}\n    x = y\n",
			err: "outside of a scope",
		},
		"unmatched close": {
			log: "}\n",
			err: "unmatched",
		},
		"edge inside scope": {
			log: "ε_0 {\nα_0 <- α_0\n}\n",
			err: "inside ε_0",
		},
		"unclosed scope": {
			log: "ε_0 {\n",
			err: "never closed",
		},
		"unknown block": {
			log: "ε_0 {\n}\nω_0 <- ω_9\n",
			err: "unknown block",
		},
		"call of unknown block": {
			log: "ε_0 {\n}\nε_3 <- ε[f]; α[f] <- α_3; ω[f] <- ω_3\n",
			err: "unknown block 3",
		},
	} {
		t.Run(name, func(t *testing.T) {
			records, err := effects.ParseLog(strings.NewReader(tc.log))
			require.NoError(t, err)
			assert.ErrorContains(t, effects.CheckLog(records), tc.err)
		})
	}
}
