package picker

import (
	"fmt"
	"strings"

	"github.com/tsali/retro-tv/internal/model"
)

// FilterByDirectory returns the items whose path begins with dir,
// preserving order. Used to restrict a station index to a single show.
func FilterByDirectory(items []model.StationItem, dir string) []model.StationItem {
	if dir == "" {
		return nil
	}
	var out []model.StationItem
	for _, item := range items {
		if strings.HasPrefix(item.Path, dir) {
			out = append(out, item)
		}
	}
	return out
}

// Scheduled applies the epoch picker over items already filtered to a
// show's directory. Callers fall back to Epoch over the unfiltered
// index when this returns an error (an empty filter has zero total).
func Scheduled(showItems []model.StationItem, now int64) (Pick, error) {
	return Epoch(showItems, now)
}

// NextSameShow walks showItems to the item matching currentPath, then
// returns the following item at offset 0, wrapping to the first item
// when current is last or not found.
func NextSameShow(showItems []model.StationItem, currentPath string) (Pick, error) {
	if len(showItems) == 0 {
		return Pick{}, fmt.Errorf("next same show: empty item list")
	}
	idx := -1
	for i, item := range showItems {
		if item.Path == currentPath {
			idx = i
			break
		}
	}
	next := 0
	if idx >= 0 {
		next = (idx + 1) % len(showItems)
	}
	item := showItems[next]
	return Pick{Path: item.Path, DurationSeconds: item.DurationSeconds, OffsetSeconds: 0}, nil
}
