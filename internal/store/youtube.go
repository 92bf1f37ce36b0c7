package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tsali/retro-tv/internal/model"
)

// LoadYouTubeStations parses the optional station->video-ID JSON map.
// A missing file yields an empty map, not an error: not every
// deployment has YouTube-backed channels.
func LoadYouTubeStations(path string) (model.YouTubeStations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.YouTubeStations{}, nil
		}
		return nil, fmt.Errorf("read youtube stations: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse youtube stations: %w", err)
	}
	out := make(model.YouTubeStations, len(raw))
	for k, v := range raw {
		out[strings.ToUpper(k)] = v
	}
	return out, nil
}
