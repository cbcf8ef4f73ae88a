package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/BarrensZeppelin/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	opts, err := cfg.SessionOptions()
	require.NoError(t, err)
	assert.Equal(t, effects.FixedPoint, opts.Propagation)
	sink, ok := opts.Sink.(*effects.FileSink)
	require.True(t, ok)
	assert.Equal(t, effects.DefaultLogPath, sink.Path)
	assert.False(t, sink.Shared)
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(ProjectFile, []byte(`
log_path: out/constraints.log
propagation: single-pass
tests: true
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out/constraints.log", cfg.LogPath)
	assert.Equal(t, "single-pass", cfg.Propagation)
	assert.True(t, cfg.Tests)
	assert.False(t, cfg.SharedLog)
}

func TestEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(ProjectFile, []byte("log_path: from-file.log\n"), 0o644))

	t.Setenv("EFFECTS_LOG", "from-env.log")
	t.Setenv("EFFECTS_SHARED_LOG", "true")
	t.Setenv("EFFECTS_VERBOSE", "not a bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env.log", cfg.LogPath)
	assert.True(t, cfg.SharedLog)
	assert.False(t, cfg.Verbose, "unparsable booleans are ignored")

	opts, err := cfg.SessionOptions()
	require.NoError(t, err)
	assert.True(t, opts.Sink.(*effects.FileSink).Shared)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Propagation = "sometimes"
	assert.ErrorContains(t, cfg.Validate(), "invalid propagation")

	cfg = DefaultConfig()
	cfg.LogPath = ""
	assert.Error(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("propagation: [fixpoint\n"), 0o644))
	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "failed to parse")

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "effects.yaml")

	cfg := DefaultConfig()
	cfg.Propagation = effects.SinglePass.String()
	cfg.SnapshotPath = "effects.msgpack"
	cfg.Verbose = true
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEveryFieldHasEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())

	typ := reflect.TypeOf(Config{})
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		_, ok := field.Tag.Lookup("env")
		assert.True(t, ok, "%s has no env tag", field.Name)
	}

	t.Setenv("EFFECTS_LOG", "env.log")
	t.Setenv("EFFECTS_PROPAGATION", "single-pass")
	t.Setenv("EFFECTS_SHARED_LOG", "1")
	t.Setenv("EFFECTS_SNAPSHOT", "env.msgpack")
	t.Setenv("EFFECTS_TESTS", "true")
	t.Setenv("EFFECTS_VERBOSE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		LogPath:      "env.log",
		Propagation:  "single-pass",
		SharedLog:    true,
		SnapshotPath: "env.msgpack",
		Tests:        true,
		Verbose:      true,
	}, cfg)
}
