package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntimeStore(t *testing.T) *RuntimeStore {
	t.Helper()
	rt, err := NewRuntimeStore(t.TempDir())
	require.NoError(t, err)
	return rt
}

func TestCurrentChannel_UnsetThenSet(t *testing.T) {
	rt := newTestRuntimeStore(t)

	_, ok, err := rt.CurrentChannel()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rt.SetCurrentChannel(7))
	n, ok, err := rt.CurrentChannel()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestChannelCommand_ConsumeClearsFile(t *testing.T) {
	rt := newTestRuntimeStore(t)

	_, ok, err := rt.ConsumeChannelCommand()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rt.WriteChannelCommand("up"))
	cmd, ok, err := rt.ConsumeChannelCommand()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "up", cmd)

	_, ok, err = rt.ConsumeChannelCommand()
	require.NoError(t, err)
	assert.False(t, ok, "consuming twice should find nothing pending the second time")
}

func TestMuteToggle_ConsumeClearsFlag(t *testing.T) {
	rt := newTestRuntimeStore(t)

	pending, err := rt.ConsumeMuteToggle()
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, rt.WriteMuteToggle())
	pending, err = rt.ConsumeMuteToggle()
	require.NoError(t, err)
	assert.True(t, pending)

	pending, err = rt.ConsumeMuteToggle()
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestVolumeDelta_SignedRoundTrip(t *testing.T) {
	rt := newTestRuntimeStore(t)

	require.NoError(t, rt.WriteVolumeDelta(-5))
	delta, ok, err := rt.ConsumeVolumeDelta()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -5, delta)
}

func TestParentalUnlocked_SetAndClear(t *testing.T) {
	rt := newTestRuntimeStore(t)

	locked, err := rt.ParentalUnlocked()
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, rt.SetParentalUnlocked())
	unlocked, err := rt.ParentalUnlocked()
	require.NoError(t, err)
	assert.True(t, unlocked)

	require.NoError(t, rt.ClearParentalUnlocked())
	unlocked, err = rt.ParentalUnlocked()
	require.NoError(t, err)
	assert.False(t, unlocked)
}

func TestOffAir_ClearAllExceptKeepsOnlyGivenStation(t *testing.T) {
	rt := newTestRuntimeStore(t)

	require.NoError(t, rt.SetOffAir("KIDS"))
	require.NoError(t, rt.SetOffAir("NEWS"))
	require.NoError(t, rt.SetOffAir("MOVIES"))

	require.NoError(t, rt.ClearAllOffAirExcept("NEWS"))

	off, err := rt.OffAir("NEWS")
	require.NoError(t, err)
	assert.True(t, off)

	off, err = rt.OffAir("KIDS")
	require.NoError(t, err)
	assert.False(t, off)

	off, err = rt.OffAir("MOVIES")
	require.NoError(t, err)
	assert.False(t, off)
}

func TestEASState_ActiveFlagAndResumeChannel(t *testing.T) {
	rt := newTestRuntimeStore(t)

	active, err := rt.EASActive()
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, rt.SetEASActive())
	active, err = rt.EASActive()
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, rt.SetEASResumeChannel(4))
	n, ok, err := rt.EASResumeChannel()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, n)

	require.NoError(t, rt.ClearEASActive())
	active, err = rt.EASActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestEASCrawl_RoundTripAndClear(t *testing.T) {
	rt := newTestRuntimeStore(t)

	_, _, ok, err := rt.EASCrawl()
	require.NoError(t, err)
	assert.False(t, ok)

	expiry := time.Date(2026, 8, 6, 16, 30, 0, 0, time.UTC)
	require.NoError(t, rt.SetEASCrawl("TORNADO WARNING for ESCAMBIA until 04:30 PM. Take shelter now.", expiry))

	text, gotExpiry, ok, err := rt.EASCrawl()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "TORNADO WARNING for ESCAMBIA until 04:30 PM. Take shelter now.", text)
	assert.True(t, expiry.Equal(gotExpiry))

	require.NoError(t, rt.ClearEASCrawl())
	_, _, ok, err = rt.EASCrawl()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEASCrawlActive_SetAndClear(t *testing.T) {
	rt := newTestRuntimeStore(t)

	active, err := rt.EASCrawlActive()
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, rt.SetEASCrawlActive())
	active, err = rt.EASCrawlActive()
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, rt.ClearEASCrawlActive())
	active, err = rt.EASCrawlActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestMTVMetadata_RoundTrip(t *testing.T) {
	rt := newTestRuntimeStore(t)

	_, ok, err := rt.MTVMetadataValue()
	require.NoError(t, err)
	assert.False(t, ok)

	meta := MTVMetadata{Path: "/mtv/1985/video.mp4", DurationSeconds: 240, OffsetSeconds: 30}
	require.NoError(t, rt.SetMTVMetadata(meta))

	got, ok, err := rt.MTVMetadataValue()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, meta, got)

	require.NoError(t, rt.ClearMTVMetadata())
	_, ok, err = rt.MTVMetadataValue()
	require.NoError(t, err)
	assert.False(t, ok)
}
