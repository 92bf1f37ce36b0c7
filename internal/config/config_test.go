package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/headend/state", cfg.StateDir)
	assert.Equal(t, 61, cfg.CountdownSeconds)
	assert.Equal(t, 10*time.Second, cfg.ReadyTimeout)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("HEADEND_STATE_DIR", "/custom/state")
	t.Setenv("HEADEND_COUNTDOWN_SECONDS", "31")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/custom/state", cfg.StateDir)
	assert.Equal(t, 31, cfg.CountdownSeconds)
}

func TestWatchContentFiles_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.tsv")
	require.NoError(t, os.WriteFile(path, []byte("1\tKIDS\ttrue\n"), 0o644))

	w, err := WatchContentFiles(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("1\tKIDS\tfalse\n"), 0o644))

	select {
	case name := <-w.Reload:
		assert.Equal(t, path, name)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload event after writing the watched file")
	}
}
