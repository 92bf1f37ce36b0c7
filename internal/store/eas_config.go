package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tsali/retro-tv/internal/model"
)

type easConfigDoc struct {
	Enabled          bool            `json:"enabled"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	PollIntervalSecs int             `json:"poll_interval_seconds"`
	AlertTypes       map[string]bool `json:"alert_types"`
	ExemptChannels   []string        `json:"exempt_channels"`
}

// LoadEASConfig parses the EAS JSON document (section 6).
func LoadEASConfig(path string) (model.EASConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.EASConfig{}, fmt.Errorf("read EAS config: %w", err)
	}
	var doc easConfigDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.EASConfig{}, fmt.Errorf("parse EAS config: %w", err)
	}

	exempt := make(map[string]bool, len(doc.ExemptChannels))
	for _, s := range doc.ExemptChannels {
		exempt[strings.ToUpper(s)] = true
	}

	return model.EASConfig{
		Enabled:          doc.Enabled,
		Latitude:         doc.Latitude,
		Longitude:        doc.Longitude,
		PollIntervalSecs: doc.PollIntervalSecs,
		AlertTypes:       doc.AlertTypes,
		ExemptStations:   exempt,
	}, nil
}
