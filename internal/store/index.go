package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsali/retro-tv/internal/model"
)

// IndexStore loads a station's ordered (path, duration) sequence from a
// well-known directory on demand. It never writes: the index is rebuilt
// by the external content-indexing collaborator.
type IndexStore struct {
	Dir string
}

// NewIndexStore builds a store rooted at dir, one file per station named
// "<STATION>.tsv".
func NewIndexStore(dir string) *IndexStore {
	return &IndexStore{Dir: dir}
}

// Load reads the index for station, tab-separated absolute_path and
// integer_seconds per line.
func (s *IndexStore) Load(station string) (model.StationIndex, error) {
	path := filepath.Join(s.Dir, strings.ToUpper(station)+".tsv")
	f, err := os.Open(path)
	if err != nil {
		return model.StationIndex{}, fmt.Errorf("open station index %s: %w", station, err)
	}
	defer f.Close()

	var items []model.StationItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimRight(scanner.Text(), "\r\n")
		if raw == "" {
			continue
		}
		fields := strings.SplitN(raw, "\t", 2)
		if len(fields) != 2 {
			return model.StationIndex{}, fmt.Errorf("station index %s line %d: expected 2 tab-separated fields", station, line)
		}
		seconds, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || seconds < 0 {
			return model.StationIndex{}, fmt.Errorf("station index %s line %d: invalid duration %q", station, line, fields[1])
		}
		items = append(items, model.StationItem{Path: fields[0], DurationSeconds: seconds})
	}
	if err := scanner.Err(); err != nil {
		return model.StationIndex{}, fmt.Errorf("read station index %s: %w", station, err)
	}

	return model.StationIndex{
		Station: strings.ToUpper(station),
		Items:   items,
		Total:   model.TotalDuration(items),
	}, nil
}
