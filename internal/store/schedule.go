package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tsali/retro-tv/internal/model"
)

type scheduleDoc struct {
	Shows []struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Path       string `json:"path"`
		Station    string `json:"station"`
		Channel    int    `json:"channel"`
		RuntimeMin int    `json:"runtime_min"`
		Episodes   int    `json:"episodes,omitempty"`
	} `json:"shows"`
	Schedule map[string]map[string][]scheduleSlotDoc `json:"schedule"`
}

// scheduleSlotDoc mirrors the on-disk slot shape: channel keys nest a
// per-day list of {start, end, show}. Times are "HHMM" strings.
type scheduleSlotDoc struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Show  string `json:"show"`
}

// LoadScheduleConfig parses the schedule JSON document (section 6):
// top-level "shows" list plus a default weekly schedule keyed by channel
// number, then lowercase day name.
func LoadScheduleConfig(path string) (model.ScheduleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ScheduleConfig{}, fmt.Errorf("read schedule config: %w", err)
	}

	var doc scheduleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ScheduleConfig{}, fmt.Errorf("parse schedule config: %w", err)
	}

	cfg := model.ScheduleConfig{
		ByChannel: make(map[int]model.WeeklySchedule),
	}

	for _, s := range doc.Shows {
		cfg.Shows = append(cfg.Shows, model.Show{
			ID:                     s.ID,
			Title:                  s.Title,
			Directory:              s.Path,
			ScheduledChannelNumber: s.Channel,
			EstimatedRuntimeMin:    s.RuntimeMin,
		})
	}

	for chanKey, days := range doc.Schedule {
		channel, err := strconv.Atoi(chanKey)
		if err != nil {
			return model.ScheduleConfig{}, fmt.Errorf("schedule config: invalid channel key %q: %w", chanKey, err)
		}
		weekly := make(model.WeeklySchedule)
		for day, slots := range days {
			day = strings.ToLower(day)
			var ds model.DaySchedule
			for _, sl := range slots {
				startMin, err := hhmmToMinutes(sl.Start)
				if err != nil {
					return model.ScheduleConfig{}, fmt.Errorf("schedule config channel %d %s: %w", channel, day, err)
				}
				endMin, err := hhmmToMinutes(sl.End)
				if err != nil {
					return model.ScheduleConfig{}, fmt.Errorf("schedule config channel %d %s: %w", channel, day, err)
				}
				ds = append(ds, model.Slot{StartMinute: startMin, EndMinute: endMin, ShowID: sl.Show})
			}
			weekly[day] = ds
		}
		cfg.ByChannel[channel] = weekly
	}

	return cfg, nil
}

// hhmmToMinutes converts a "HHMM" string (e.g. "0630", "2400") to minutes
// since midnight.
func hhmmToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 4 {
		return 0, fmt.Errorf("invalid HHMM value %q", hhmm)
	}
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid HHMM value %q: %w", hhmm, err)
	}
	m, err := strconv.Atoi(hhmm[2:])
	if err != nil {
		return 0, fmt.Errorf("invalid HHMM value %q: %w", hhmm, err)
	}
	return h*60 + m, nil
}
