// Package schedule resolves a channel and wall-clock time to the show
// scheduled for that moment, including the SIGNOFF/SIGNON pseudo-shows.
package schedule

import (
	"strings"
	"time"

	"github.com/tsali/retro-tv/internal/model"
)

var weekdayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Resolution is what the resolver found for a given (channel, now).
type Resolution struct {
	ShowID    string
	Directory string // empty for SIGNOFF/SIGNON
}

// Resolve finds the slot covering now for channel, per the weekly
// schedule, and returns the associated show. It returns ok=false when
// no slot covers now (an epoch-fallback gap) or the channel has no
// schedule at all.
func Resolve(cfg model.ScheduleConfig, channel int, now time.Time) (Resolution, bool) {
	weekly, ok := cfg.ByChannel[channel]
	if !ok {
		return Resolution{}, false
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	day := weekdayNames[int(now.Weekday())]

	if slot, ok := findSlot(weekly[day], nowMinutes); ok {
		return resolutionFor(cfg, slot.ShowID)
	}

	// Check yesterday's slots that wrap past midnight into today.
	yesterday := weekdayNames[(int(now.Weekday())+6)%7]
	if slot, ok := findWrappedSlot(weekly[yesterday], nowMinutes); ok {
		return resolutionFor(cfg, slot.ShowID)
	}

	return Resolution{}, false
}

// findSlot returns the first slot (in list order — first match wins)
// whose window contains minute, including same-day wrap (end <= start
// means the slot runs past midnight).
func findSlot(day model.DaySchedule, minute int) (model.Slot, bool) {
	for _, slot := range day {
		if slot.EndMinute <= slot.StartMinute {
			// Wraps past midnight: covers [start, 1440) today.
			if minute >= slot.StartMinute {
				return slot, true
			}
			continue
		}
		if minute >= slot.StartMinute && minute < slot.EndMinute {
			return slot, true
		}
	}
	return model.Slot{}, false
}

// findWrappedSlot checks yesterday's midnight-wrapping slots for
// coverage of a minute early in today, i.e. [0, end).
func findWrappedSlot(day model.DaySchedule, minute int) (model.Slot, bool) {
	for _, slot := range day {
		if slot.EndMinute <= slot.StartMinute && minute < slot.EndMinute {
			return slot, true
		}
	}
	return model.Slot{}, false
}

func resolutionFor(cfg model.ScheduleConfig, showID string) (Resolution, bool) {
	upper := strings.ToUpper(showID)
	if upper == model.ShowSignoff || upper == model.ShowSignon {
		return Resolution{ShowID: upper}, true
	}
	for _, show := range cfg.Shows {
		if show.ID == showID {
			return Resolution{ShowID: show.ID, Directory: show.Directory}, true
		}
	}
	return Resolution{}, false
}
