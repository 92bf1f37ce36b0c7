// Package registry holds the loaded channel table and answers channel
// lookups and up/down navigation over the enabled subset.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tsali/retro-tv/internal/model"
)

// Registry is a read-mostly view of the channel table, safe for
// concurrent use by the tuner and by the config reload watcher.
type Registry struct {
	mu       sync.RWMutex
	byNumber map[int]model.Channel
	enabled  []int // sorted ascending
}

// New builds a Registry from a loaded channel table.
func New(channels []model.Channel) *Registry {
	r := &Registry{}
	r.replace(channels)
	return r
}

// Replace swaps in a freshly loaded channel table, used on config reload.
func (r *Registry) Replace(channels []model.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replace(channels)
}

func (r *Registry) replace(channels []model.Channel) {
	byNumber := make(map[int]model.Channel, len(channels))
	var enabled []int
	for _, c := range channels {
		byNumber[c.Number] = c
		if c.Enabled {
			enabled = append(enabled, c.Number)
		}
	}
	sort.Ints(enabled)
	r.byNumber = byNumber
	r.enabled = enabled
}

// Resolve returns the channel for number, or ok=false if it isn't in the
// table at all (dialing a nonexistent number is a no-op for the caller).
func (r *Registry) Resolve(number int) (model.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byNumber[number]
	return c, ok
}

// ListEnabled returns the enabled channel numbers, ascending.
func (r *Registry) ListEnabled() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, len(r.enabled))
	copy(out, r.enabled)
	return out
}

// Up returns the next enabled channel number after from, wrapping to the
// lowest enabled number past the top of the range. It returns an error
// only when the table has no enabled channels at all.
func (r *Registry) Up(from int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.step(from, 1)
}

// Down returns the previous enabled channel number before from, wrapping
// to the highest enabled number below the bottom of the range.
func (r *Registry) Down(from int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.step(from, -1)
}

// step walks the enabled list from an arbitrary starting number (which
// itself need not be enabled, e.g. mid-EAS-preemption) in dir, +1 or -1.
func (r *Registry) step(from, dir int) (int, error) {
	if len(r.enabled) == 0 {
		return 0, fmt.Errorf("channel registry: no enabled channels")
	}
	if len(r.enabled) == 1 {
		return r.enabled[0], nil
	}

	idx := sort.SearchInts(r.enabled, from)
	switch dir {
	case 1:
		if idx < len(r.enabled) && r.enabled[idx] == from {
			idx++
		} else {
			// idx already points at the first enabled number above from.
		}
		if idx >= len(r.enabled) {
			idx = 0
		}
	case -1:
		if idx > 0 {
			idx--
		} else {
			idx = len(r.enabled) - 1
		}
	default:
		return 0, fmt.Errorf("channel registry: invalid step direction %d", dir)
	}
	return r.enabled[idx], nil
}
