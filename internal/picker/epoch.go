// Package picker implements the deterministic content selection
// algorithms: the epoch picker over a full station index, its
// restriction to a single show's files, and the epoch-shuffled MTV
// variant.
package picker

import (
	"fmt"

	"github.com/tsali/retro-tv/internal/model"
)

// Pick is a resolved (file, offset) selection.
type Pick struct {
	Path            string
	DurationSeconds int
	OffsetSeconds   int
}

// Epoch walks items accumulating durations and returns the item whose
// span covers pos = now mod total. Two calls with the same now and an
// identical item ordering always return the same Pick.
func Epoch(items []model.StationItem, now int64) (Pick, error) {
	total := model.TotalDuration(items)
	if total <= 0 {
		return Pick{}, fmt.Errorf("epoch pick: index has zero total duration")
	}

	pos := now % int64(total)
	if pos < 0 {
		pos += int64(total)
	}

	var acc int64
	for _, item := range items {
		next := acc + int64(item.DurationSeconds)
		if next > pos {
			return Pick{
				Path:            item.Path,
				DurationSeconds: item.DurationSeconds,
				OffsetSeconds:   int(pos - acc),
			}, nil
		}
		acc = next
	}
	return Pick{}, fmt.Errorf("epoch pick: no item covers pos %d of total %d", pos, total)
}
