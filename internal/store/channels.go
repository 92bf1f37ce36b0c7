package store

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tsali/retro-tv/internal/model"
)

// LoadChannelTable reads the tab-separated channel table: number, station,
// enabled. Lines beginning with # are ignored. Result is sorted ascending
// by number.
func LoadChannelTable(path string) ([]model.Channel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open channel table: %w", err)
	}
	defer f.Close()

	var channels []model.Channel
	seen := make(map[int]bool)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimRight(scanner.Text(), "\r\n")
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		fields := strings.Split(raw, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("channel table line %d: expected 3 tab-separated fields, got %d", line, len(fields))
		}
		number, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("channel table line %d: invalid channel number %q: %w", line, fields[0], err)
		}
		enabled, err := strconv.ParseBool(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("channel table line %d: invalid enabled flag %q: %w", line, fields[2], err)
		}
		if seen[number] {
			return nil, fmt.Errorf("channel table line %d: duplicate channel number %d", line, number)
		}
		seen[number] = true

		channels = append(channels, model.Channel{
			Number:  number,
			Station: strings.ToUpper(strings.TrimSpace(fields[1])),
			Enabled: enabled,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read channel table: %w", err)
	}

	sort.Slice(channels, func(i, j int) bool { return channels[i].Number < channels[j].Number })
	return channels, nil
}
