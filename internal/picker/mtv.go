package picker

import (
	"hash/fnv"
	"sort"

	"github.com/tsali/retro-tv/internal/model"
)

// mtvHash combines a path and cycle number into a stable sort key: same
// inputs always hash the same, so mid-cycle tune-ins land consistently,
// while different cycles reshuffle the order.
func mtvHash(path string, cycle int64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(cycle >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// mtvLastSeconds is the tail window within which a landed offset is
// considered too close to the end and gets reset to the start instead.
const mtvLastSeconds = 15

// MTV shuffles items by a stable per-cycle hash, applies the epoch
// picker over that order, then resets the offset to 0 if it landed in
// the final mtvLastSeconds of an item longer than that window — tuning
// into the last few seconds of a video risks hanging on some players.
func MTV(items []model.StationItem, now int64) (Pick, error) {
	total := model.TotalDuration(items)
	if total <= 0 {
		return Epoch(items, now) // reuse Epoch's zero-duration error wording
	}
	cycle := now / int64(total)

	shuffled := make([]model.StationItem, len(items))
	copy(shuffled, items)
	sort.SliceStable(shuffled, func(i, j int) bool {
		return mtvHash(shuffled[i].Path, cycle) < mtvHash(shuffled[j].Path, cycle)
	})

	pick, err := Epoch(shuffled, now)
	if err != nil {
		return Pick{}, err
	}

	if pick.DurationSeconds > mtvLastSeconds && pick.OffsetSeconds > pick.DurationSeconds-mtvLastSeconds {
		pick.OffsetSeconds = 0
	}
	return pick, nil
}
