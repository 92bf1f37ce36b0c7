package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertQueue_PendingIsEmptyForMissingDir(t *testing.T) {
	q := NewAlertQueue(filepath.Join(t.TempDir(), "nonexistent"))
	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAlertQueue_PendingSortedByName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.json"), []byte("{}"), 0o644))

	q := NewAlertQueue(dir)
	pending, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, filepath.Join(dir, "1.json"), pending[0])
	assert.Equal(t, filepath.Join(dir, "2.json"), pending[1])
}

func TestAlertQueue_ReadParsesDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"event": "TORNADO WARNING",
		"areas": ["ESCAMBIA"],
		"headline": "Take shelter now.",
		"expires": "2026-08-06T16:30:00Z"
	}`), 0o644))

	q := NewAlertQueue(dir)
	desc, err := q.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "TORNADO WARNING", desc.Event)
	assert.Equal(t, []string{"ESCAMBIA"}, desc.Areas)
	assert.Equal(t, "Take shelter now.", desc.Headline)
	assert.False(t, desc.Expires.IsZero())
}

func TestAlertQueue_DeleteAllClearsPending(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.json"), []byte("{}"), 0o644))

	q := NewAlertQueue(dir)
	require.NoError(t, q.DeleteAll())

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAlertQueue_DeleteMissingFileIsNotAnError(t *testing.T) {
	q := NewAlertQueue(t.TempDir())
	assert.NoError(t, q.Delete(filepath.Join(q.Dir, "absent.json")))
}
