package eas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tsali/retro-tv/internal/model"
)

func TestBuildCrawlText_FullDescriptor(t *testing.T) {
	desc := model.AlertDescriptor{
		Event:    "TORNADO WARNING",
		Areas:    []string{"ESCAMBIA"},
		Headline: "Take shelter now.",
	}
	expiry := time.Date(2026, 8, 6, 16, 30, 0, 0, time.Local)

	got := buildCrawlText(desc, expiry)
	assert.Equal(t, "TORNADO WARNING for ESCAMBIA until 04:30 PM. Take shelter now.", got)
}

func TestBuildCrawlText_MultipleAreas(t *testing.T) {
	desc := model.AlertDescriptor{
		Event: "FLASH FLOOD WARNING",
		Areas: []string{"ESCAMBIA", "SANTA ROSA"},
	}
	expiry := time.Date(2026, 8, 6, 9, 5, 0, 0, time.Local)

	got := buildCrawlText(desc, expiry)
	assert.Equal(t, "FLASH FLOOD WARNING for ESCAMBIA, SANTA ROSA until 09:05 AM", got)
}

func TestBuildCrawlText_NoEventOrAreasFallsBackToGenericPrefix(t *testing.T) {
	desc := model.AlertDescriptor{Headline: "Stay tuned."}
	expiry := time.Date(2026, 8, 6, 12, 0, 0, 0, time.Local)

	got := buildCrawlText(desc, expiry)
	assert.Equal(t, "Alert until 12:00 PM. Stay tuned.", got)
}
