package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/mir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.log")
	sess := effects.NewSession(effects.Options{Sink: effects.NewFileSink(path, false)})
	_, err := sess.Analyze(&mir.Body{Name: "f", Blocks: []*mir.BasicBlock{
		{Terminator: mir.Call{
			Func:    mir.Const{Constant: mir.Constant{Literal: "g"}},
			Target:  1,
			Cleanup: mir.NoBlock,
		}},
		{Terminator: mir.Return{}},
	}})
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	out, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "7 records")
	assert.Contains(t, out, "scope-open   2")
	assert.Contains(t, out, "call         1")
}

func TestCheckRejectsBrokenLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.log")
	require.NoError(t, os.WriteFile(path, []byte("ε_0 {\nε_1 {\n}\n"), 0o644))

	_, err := execute(t, "check", path)
	assert.ErrorContains(t, err, "opened inside")
}

func TestRunRejectsBadPropagation(t *testing.T) {
	_, err := execute(t, "run", "--dir", t.TempDir(), "--propagation", "sometimes", "./...")
	assert.ErrorContains(t, err, "invalid propagation")
}
