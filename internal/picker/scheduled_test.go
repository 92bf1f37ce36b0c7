package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsali/retro-tv/internal/model"
)

func TestFilterByDirectory(t *testing.T) {
	items := []model.StationItem{
		{Path: "/shows/comedy/ep1.mp4", DurationSeconds: 10},
		{Path: "/shows/drama/ep1.mp4", DurationSeconds: 10},
		{Path: "/shows/comedy/ep2.mp4", DurationSeconds: 10},
	}
	filtered := FilterByDirectory(items, "/shows/comedy/")
	require.Len(t, filtered, 2)
	assert.Equal(t, "/shows/comedy/ep1.mp4", filtered[0].Path)
	assert.Equal(t, "/shows/comedy/ep2.mp4", filtered[1].Path)
}

func TestNextSameShow_WrapsToFirst(t *testing.T) {
	items := []model.StationItem{
		{Path: "ep1", DurationSeconds: 10},
		{Path: "ep2", DurationSeconds: 10},
		{Path: "ep3", DurationSeconds: 10},
	}

	next, err := NextSameShow(items, "ep1")
	require.NoError(t, err)
	assert.Equal(t, "ep2", next.Path)
	assert.Equal(t, 0, next.OffsetSeconds)

	next, err = NextSameShow(items, "ep3")
	require.NoError(t, err)
	assert.Equal(t, "ep1", next.Path)
}

func TestNextSameShow_UnknownCurrentStartsAtFirst(t *testing.T) {
	items := []model.StationItem{{Path: "ep1", DurationSeconds: 10}, {Path: "ep2", DurationSeconds: 10}}
	next, err := NextSameShow(items, "missing")
	require.NoError(t, err)
	assert.Equal(t, "ep1", next.Path)
}
