// Package eas implements Emergency Alert System preemption: the alert
// runner that takes over playback for pending alerts, and the crawl
// keeper that maintains the persistent ticker overlay afterward.
package eas

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/external"
	"github.com/tsali/retro-tv/internal/model"
	"github.com/tsali/retro-tv/internal/registry"
	"github.com/tsali/retro-tv/internal/store"
	"github.com/tsali/retro-tv/internal/tuner"
	"github.com/tsali/retro-tv/pkg/mpv"
)

const (
	minDisplayDuration = 60 * time.Second
	defaultExpiryDelta = 120 * time.Second
	retainedVideos     = 5
)

// Runner is the alert-runner watcher (the first of the two EAS
// watchers described by the controller's design).
type Runner struct {
	Cfg       *config.Config
	IPC       *mpv.Client
	Runtime   *store.RuntimeStore
	Alerts    *store.AlertQueue
	EASConfig *config.Holder[model.EASConfig]
	Registry  *registry.Registry
	Generator *external.AlertVideoGenerator
	Tuner     *tuner.Tuner
	Now       func() time.Time
	Log       zerolog.Logger
}

// Run polls at 1 Hz until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				r.Log.Warn().Err(err).Msg("EAS alert runner tick error")
			}
		}
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) tick(ctx context.Context) error {
	active, err := r.Runtime.EASActive()
	if err != nil || active {
		return err
	}

	pending, err := r.Alerts.Pending()
	if err != nil || len(pending) == 0 {
		return err
	}

	channelNumber, ok, err := r.Runtime.CurrentChannel()
	if err != nil || !ok {
		return err
	}
	channel, ok := r.Registry.Resolve(channelNumber)
	if !ok {
		return nil
	}

	if r.EASConfig.Load().ExemptStations[strings.ToUpper(channel.Station)] {
		return r.Alerts.DeleteAll()
	}

	return r.runAlerts(ctx, channelNumber, pending)
}

func (r *Runner) runAlerts(ctx context.Context, resumeChannel int, pending []string) error {
	if err := r.Runtime.SetEASResumeChannel(resumeChannel); err != nil {
		return err
	}
	if err := r.Runtime.SetEASActive(); err != nil {
		return err
	}
	start := r.now()

	overridden := false
	for _, path := range pending {
		if overridden {
			break
		}
		if err := r.playOne(ctx, path, &overridden); err != nil {
			r.Log.Warn().Err(err).Str("alert", path).Msg("alert playback failed, continuing to next")
		}
	}

	if elapsed := r.now().Sub(start); elapsed < minDisplayDuration {
		time.Sleep(minDisplayDuration - elapsed)
	}

	if err := r.Runtime.ClearEASActive(); err != nil {
		return err
	}

	resume, ok, err := r.Runtime.EASResumeChannel()
	if err != nil {
		return err
	}
	if !ok {
		resume = resumeChannel
	}
	if err := r.Tuner.Tune(ctx, resume); err != nil {
		r.Log.Warn().Err(err).Msg("EAS resume retune failed")
	}

	return r.installCrawlIfDue(resume)
}

func (r *Runner) playOne(ctx context.Context, path string, overridden *bool) error {
	desc, err := r.Alerts.Read(path)
	if err != nil {
		_ = r.Alerts.Delete(path)
		return err
	}

	expiry := desc.Expires
	if expiry.IsZero() {
		expiry = r.now().Add(defaultExpiryDelta)
	}
	crawlText := buildCrawlText(desc, expiry)
	if err := r.Runtime.SetEASCrawl(crawlText, expiry); err != nil {
		return err
	}

	videoPath, err := r.Generator.Generate(ctx, desc)
	if err != nil {
		_ = r.Alerts.Delete(path)
		return fmt.Errorf("generate alert video: %w", err)
	}
	_ = r.Alerts.Delete(path)

	if err := r.IPC.Load(videoPath, 0); err != nil {
		return fmt.Errorf("load alert video: %w", err)
	}
	time.Sleep(2 * time.Second)

	for {
		loaded, err := r.IPC.GetStringProperty("path")
		if err == nil && loaded != "" && loaded != videoPath {
			*overridden = true
			return r.Alerts.DeleteAll()
		}

		eofData, err := r.IPC.GetProperty("eof-reached")
		if err == nil {
			if eof, ok := eofData.(bool); ok && eof {
				return nil
			}
		}
		time.Sleep(1 * time.Second)
	}
}

func (r *Runner) installCrawlIfDue(resumeChannel int) error {
	text, _, ok, err := r.Runtime.EASCrawl()
	if err != nil || !ok {
		return err
	}
	channel, chOK := r.Registry.Resolve(resumeChannel)
	if chOK && r.EASConfig.Load().ExemptStations[strings.ToUpper(channel.Station)] {
		return nil
	}
	if err := r.Runtime.SetEASCrawlActive(); err != nil {
		return err
	}
	if err := r.IPC.AddFilter(mpv.FilterLabelCrawl, mpv.CrawlFilterSpec(text, r.Cfg.CrawlFontPath)); err != nil {
		return err
	}
	return r.pruneAlertVideos()
}

// pruneAlertVideos keeps only the retainedVideos most recently modified
// generated alert videos on disk.
func (r *Runner) pruneAlertVideos() error {
	entries, err := os.ReadDir(r.Cfg.AlertVideoDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list alert videos: %w", err)
	}
	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var files []fileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: filepath.Join(r.Cfg.AlertVideoDir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.After(files[j].modTime) })
	for _, f := range files[min(retainedVideos, len(files)):] {
		_ = os.Remove(f.path)
	}
	return nil
}

// buildCrawlText assembles "EVENT for AREAS until EXPIRES. HEADLINE",
// omitting any part the alert didn't provide; when both event and areas
// are missing, the text starts with "Alert until" instead.
func buildCrawlText(desc model.AlertDescriptor, expiry time.Time) string {
	var b strings.Builder
	if desc.Event != "" {
		b.WriteString(desc.Event)
	}
	if len(desc.Areas) > 0 {
		if b.Len() > 0 {
			b.WriteString(" for ")
		}
		b.WriteString(strings.Join(desc.Areas, ", "))
	}
	if b.Len() > 0 {
		b.WriteString(" until ")
	} else {
		b.WriteString("Alert until ")
	}
	b.WriteString(expiry.Local().Format("03:04 PM"))
	if desc.Headline != "" {
		b.WriteString(". ")
		b.WriteString(desc.Headline)
	}
	return b.String()
}
