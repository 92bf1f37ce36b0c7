package mpv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrambleFilterSpec_IsAStableChain(t *testing.T) {
	spec := ScrambleFilterSpec()
	assert.Contains(t, spec, "hue=")
	assert.Contains(t, spec, "noise=")
	assert.Contains(t, spec, "rgbashift=")
}

func TestCrawlFilterSpec_EmbedsTextAndFont(t *testing.T) {
	spec := CrawlFilterSpec("TORNADO WARNING", "/fonts/crawl.ttf")
	assert.Contains(t, spec, "fontfile='/fonts/crawl.ttf'")
	assert.Contains(t, spec, "TORNADO WARNING")
	assert.True(t, strings.HasPrefix(spec, "drawbox="))
}

func TestEscapeDrawtext_EscapesStructuralCharacters(t *testing.T) {
	got := escapeDrawtext(`it's: a, test\here`)
	assert.Equal(t, `it\'s\: a\, test\\here`, got)
}

func TestEscapeDrawtext_LeavesPlainTextUntouched(t *testing.T) {
	got := escapeDrawtext("TAKE SHELTER NOW")
	assert.Equal(t, "TAKE SHELTER NOW", got)
}
