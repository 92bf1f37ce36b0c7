package mpv

import "fmt"

// Filter labels used by the controller, kept stable so add/remove pairs
// never collide with unrelated filters and so a re-apply of the crawl
// filter never disturbs the scramble filter or vice versa.
const (
	FilterLabelScramble = "parental_scramble"
	FilterLabelCrawl    = "eas_crawl"
)

// ScrambleFilterSpec builds the parental-lockout video filter chain:
// hue rotation, noise, and an RGB channel shift, degrading the picture
// without blanking it entirely.
func ScrambleFilterSpec() string {
	return "hue=h=90:s=0.3,noise=alls=40:allf=t,rgbashift=rh=8:bh=-8"
}

// CrawlFilterSpec builds the EAS ticker overlay: a red band across the
// top of the frame and a horizontally scrolling text strip rendered
// with fontFile, looping at a fixed rate independent of video width.
func CrawlFilterSpec(text, fontFile string) string {
	escaped := escapeDrawtext(text)
	band := "drawbox=x=0:y=0:w=iw:h=ih*0.08:color=red@0.85:t=fill"
	scroll := fmt.Sprintf(
		"drawtext=fontfile='%s':text='%s':fontcolor=white:fontsize=h*0.05:"+
			"y=ih*0.015:x=w-mod(t*120\\,w+tw)",
		fontFile, escaped,
	)
	return band + "," + scroll
}

// escapeDrawtext escapes characters that are structurally significant
// inside an mpv/ffmpeg drawtext filter argument.
func escapeDrawtext(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'', ':', '\\', ',':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
