package effects_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BarrensZeppelin/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileSinkTruncatesOnFirstOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	sink := effects.NewFileSink(path, false)
	require.NoError(t, sink.Open())
	require.NoError(t, sink.Append([]byte("one\n")))
	require.NoError(t, sink.Open())
	require.NoError(t, sink.Append([]byte("two\n")))
	require.NoError(t, sink.Close())

	assert.Equal(t, "one\ntwo\n", readFile(t, path))

	// Reopening after Close keeps what was written.
	require.NoError(t, sink.Append([]byte("three\n")))
	require.NoError(t, sink.Close())
	assert.Equal(t, "one\ntwo\nthree\n", readFile(t, path))
}

func TestFileSinkShared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.log")

	for _, fn := range []string{"first", "second"} {
		sess := effects.NewSession(effects.Options{Sink: effects.NewFileSink(path, true)})
		_, err := sess.Analyze(straightLine())
		require.NoError(t, err, fn)
		require.NoError(t, sess.Close())
	}

	records, err := effects.ParseLog(mustOpen(t, path))
	require.NoError(t, err)

	opens := 0
	for _, r := range records {
		if r.Kind == effects.ScopeOpen {
			opens++
		}
	}
	assert.Equal(t, 6, opens, "both processes' records are kept")
	// Independent sessions restart numbering, so the combined log repeats ids.
	assert.Error(t, effects.CheckLog(records))
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
