package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsali/retro-tv/internal/model"
)

func chans(numbers ...int) []model.Channel {
	out := make([]model.Channel, len(numbers))
	for i, n := range numbers {
		out[i] = model.Channel{Number: n, Enabled: true}
	}
	return out
}

func TestUpDown_WrapAround(t *testing.T) {
	r := New(chans(2, 5, 9))

	next, err := r.Up(9)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	prev, err := r.Down(2)
	require.NoError(t, err)
	assert.Equal(t, 9, prev)
}

func TestUpDown_MidRange(t *testing.T) {
	r := New(chans(2, 5, 9))

	next, err := r.Up(5)
	require.NoError(t, err)
	assert.Equal(t, 9, next)

	prev, err := r.Down(9)
	require.NoError(t, err)
	assert.Equal(t, 5, prev)
}

func TestUpDown_ClosureOverEnabledSet(t *testing.T) {
	r := New(chans(2, 5, 9, 14, 20))
	enabled := r.ListEnabled()

	for _, start := range enabled {
		cur := start
		for n := 1; n <= len(enabled); n++ {
			next, err := r.Up(cur)
			require.NoError(t, err)
			cur = next
		}
		assert.Equal(t, start, cur, "n ups over the full cycle should return to start")

		cur = start
		for n := 1; n <= len(enabled); n++ {
			prev, err := r.Down(cur)
			require.NoError(t, err)
			cur = prev
		}
		assert.Equal(t, start, cur, "n downs over the full cycle should return to start")
	}
}

func TestUpDown_RoundTrip(t *testing.T) {
	r := New(chans(2, 5, 9, 14))
	for _, start := range r.ListEnabled() {
		next, err := r.Up(start)
		require.NoError(t, err)
		back, err := r.Down(next)
		require.NoError(t, err)
		assert.Equal(t, start, back)
	}
}

func TestUpDown_SingleEnabledChannelIsFixedPoint(t *testing.T) {
	r := New(chans(7))
	next, err := r.Up(7)
	require.NoError(t, err)
	assert.Equal(t, 7, next)

	prev, err := r.Down(7)
	require.NoError(t, err)
	assert.Equal(t, 7, prev)
}

func TestUpDown_NoEnabledChannelsErrors(t *testing.T) {
	r := New([]model.Channel{{Number: 3, Enabled: false}})
	_, err := r.Up(3)
	assert.Error(t, err)
	_, err = r.Down(3)
	assert.Error(t, err)
}

func TestUp_FromDisabledStartingPoint(t *testing.T) {
	r := New(chans(2, 5, 9))
	next, err := r.Up(6)
	require.NoError(t, err)
	assert.Equal(t, 9, next)
}

func TestDown_FromDisabledStartingPoint(t *testing.T) {
	r := New(chans(2, 5, 9))
	prev, err := r.Down(6)
	require.NoError(t, err)
	assert.Equal(t, 5, prev)
}

func TestResolve_UnknownChannelNotOK(t *testing.T) {
	r := New(chans(2, 5))
	_, ok := r.Resolve(99)
	assert.False(t, ok)
}

func TestReplace_SwapsInNewTable(t *testing.T) {
	r := New(chans(2, 5))
	r.Replace(chans(3, 6, 9))
	assert.Equal(t, []int{3, 6, 9}, r.ListEnabled())
}
