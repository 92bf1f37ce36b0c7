package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_CreatesAndReleaseRemovesFile(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "headend.lock")
	s := &Supervisor{lockPath: lockPath}

	require.NoError(t, s.acquireLock())
	_, err := os.Stat(lockPath)
	require.NoError(t, err)

	s.releaseLock()
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireLock_SecondAcquireFailsWhileHeld(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "headend.lock")
	first := &Supervisor{lockPath: lockPath}
	require.NoError(t, first.acquireLock())
	defer first.releaseLock()

	second := &Supervisor{lockPath: lockPath}
	assert.Error(t, second.acquireLock())
}
