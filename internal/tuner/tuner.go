// Package tuner implements the single tune(station) entry point that
// routes a channel change to the right content source and resets
// transient per-channel state between stations.
package tuner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/external"
	"github.com/tsali/retro-tv/internal/model"
	"github.com/tsali/retro-tv/internal/picker"
	"github.com/tsali/retro-tv/internal/registry"
	"github.com/tsali/retro-tv/internal/schedule"
	"github.com/tsali/retro-tv/internal/store"
	"github.com/tsali/retro-tv/pkg/mpv"
)

var mtvStationPattern = regexp.MustCompile(`^MTV(\d{4})?$`)

// Clock is injected so tests can control "now" without sleeping.
type Clock func() time.Time

// Tuner holds every collaborator the dispatch logic needs.
type Tuner struct {
	Cfg *config.Config

	IPC      *mpv.Client
	Registry *registry.Registry
	Runtime  *store.RuntimeStore
	Index    *store.IndexStore

	Schedule *config.Holder[model.ScheduleConfig]
	Parental *config.Holder[model.ParentalPolicy]
	YouTube  *config.Holder[model.YouTubeStations]

	EPG          *external.EPGRenderer
	MusicProcess *mpv.Process
	YTResolver   *external.YouTubeResolver

	Now Clock
	Log zerolog.Logger
}

// New builds a Tuner whose clock is time.Now.
func New(cfg *config.Config, ipc *mpv.Client, reg *registry.Registry, rt *store.RuntimeStore, idx *store.IndexStore,
	sched *config.Holder[model.ScheduleConfig], parental *config.Holder[model.ParentalPolicy], yt *config.Holder[model.YouTubeStations],
	epg *external.EPGRenderer, ytResolver *external.YouTubeResolver, log zerolog.Logger) *Tuner {
	return &Tuner{
		Cfg: cfg, IPC: ipc, Registry: reg, Runtime: rt, Index: idx,
		Schedule: sched, Parental: parental, YouTube: yt,
		EPG: epg, YTResolver: ytResolver,
		Now: time.Now, Log: log,
	}
}

// Tune applies station selection for channel number. Unknown channel
// numbers are a no-op: nothing was dialable there.
func (t *Tuner) Tune(ctx context.Context, number int) error {
	channel, ok := t.Registry.Resolve(number)
	if !ok {
		t.Log.Warn().Int("channel", number).Msg("tune: unknown channel number")
		return nil
	}

	previous, hadPrevious, err := t.Runtime.CurrentChannel()
	if err != nil {
		t.Log.Warn().Err(err).Msg("tune: read previous channel")
	}

	if err := t.teardown(channel.Station, previous, hadPrevious); err != nil {
		t.Log.Warn().Err(err).Msg("tune: teardown had a non-fatal error")
	}

	if err := t.dispatch(ctx, channel); err != nil {
		t.Log.Warn().Err(err).Str("station", channel.Station).Msg("dispatch failed, falling back to snow")
		if err := t.IPC.Load(t.Cfg.SnowVideoPath, 0); err != nil {
			return fmt.Errorf("tune %s: dispatch and snow fallback both failed: %w", channel.Station, err)
		}
	}

	t.applyParentalPresentation(channel, number)

	if err := t.Runtime.SetCurrentChannel(number); err != nil {
		return fmt.Errorf("tune: persist current channel: %w", err)
	}
	return nil
}

// teardown clears everything that must not leak across a channel
// change: session unlock (for auto-lock channels only), scramble
// filter, MTV overlay metadata, and off-air flags belonging to other
// stations.
func (t *Tuner) teardown(newStation string, previousChannel int, hadPrevious bool) error {
	if hadPrevious && t.Parental.Load().AutoLock(previousChannel) {
		if err := t.Runtime.ClearParentalUnlocked(); err != nil {
			return err
		}
	}
	if err := t.IPC.RemoveFilter(mpv.FilterLabelScramble); err != nil {
		t.Log.Debug().Err(err).Msg("teardown: remove scramble filter")
	}
	_ = t.IPC.Command("osd-message", "")
	if err := t.Runtime.ClearMTVMetadata(); err != nil {
		return err
	}
	if t.EPG != nil {
		t.EPG.Stop()
	}
	if t.MusicProcess != nil && t.MusicProcess.IsRunning() {
		t.MusicProcess.Stop()
	}
	return t.Runtime.ClearAllOffAirExcept(newStation)
}

func (t *Tuner) dispatch(ctx context.Context, channel model.Channel) error {
	station := strings.ToUpper(channel.Station)

	switch {
	case station == "EPG":
		return t.dispatchEPG(ctx)
	case station == "WEATHER":
		return t.IPC.Load(t.Cfg.WeatherStreamURL, 0)
	case mtvStationPattern.MatchString(station):
		return t.dispatchMTV(station)
	}

	if videoID, ok := t.YouTube.Load()[station]; ok {
		url, err := t.YTResolver.Resolve(ctx, videoID)
		if err != nil {
			t.Log.Warn().Err(err).Str("station", station).Msg("youtube resolve failed")
			return t.IPC.Load(t.Cfg.SnowVideoPath, 0)
		}
		return t.IPC.Load(url, 0)
	}

	return t.dispatchScheduledOrEpoch(channel)
}

func (t *Tuner) dispatchEPG(ctx context.Context) error {
	if err := t.EPG.Start(ctx); err != nil {
		return fmt.Errorf("start EPG renderer: %w", err)
	}
	if t.MusicProcess != nil {
		if err := t.MusicProcess.Start(); err != nil {
			t.Log.Warn().Err(err).Msg("start EPG background music failed")
		}
	}
	return nil
}

func (t *Tuner) dispatchMTV(station string) error {
	idx, err := t.Index.Load(station)
	if err != nil {
		return fmt.Errorf("load MTV index for %s: %w", station, err)
	}
	pick, err := picker.MTV(idx.Items, t.Now().Unix())
	if err != nil {
		return fmt.Errorf("MTV pick for %s: %w", station, err)
	}
	if err := t.IPC.Load(pick.Path, float64(pick.OffsetSeconds)); err != nil {
		return err
	}
	return t.Runtime.SetMTVMetadata(store.MTVMetadata{
		Path:            pick.Path,
		DurationSeconds: pick.DurationSeconds,
		OffsetSeconds:   pick.OffsetSeconds,
	})
}

func (t *Tuner) dispatchScheduledOrEpoch(channel model.Channel) error {
	res, hasSlot := schedule.Resolve(t.Schedule.Load(), channel.Number, t.Now())
	if hasSlot {
		switch res.ShowID {
		case model.ShowSignoff:
			return t.dispatchSignoff(channel.Station)
		case model.ShowSignon:
			return t.dispatchSignon(channel.Station)
		}
	}

	idx, err := t.Index.Load(channel.Station)
	if err != nil {
		return fmt.Errorf("load index for %s: %w", channel.Station, err)
	}

	if hasSlot && res.Directory != "" {
		items := picker.FilterByDirectory(idx.Items, res.Directory)
		if len(items) > 0 {
			pick, err := picker.Scheduled(items, t.Now().Unix())
			if err == nil {
				if err := t.Runtime.SetLastContentPath(pick.Path); err != nil {
					t.Log.Warn().Err(err).Msg("persist last content path")
				}
				return t.IPC.Load(pick.Path, float64(pick.OffsetSeconds))
			}
		}
	}

	pick, err := picker.Epoch(idx.Items, t.Now().Unix())
	if err != nil {
		return fmt.Errorf("epoch fallback for %s: %w", channel.Station, err)
	}
	return t.IPC.Load(pick.Path, float64(pick.OffsetSeconds))
}

func (t *Tuner) dispatchSignoff(station string) error {
	off, err := t.Runtime.OffAir(station)
	if err != nil {
		return err
	}
	if off {
		return t.IPC.Load(t.Cfg.TestPatternImage, 0)
	}
	if err := t.IPC.Load(t.Cfg.OffAirAnimation, 0); err != nil {
		return err
	}
	return t.Runtime.SetOffAir(station)
}

func (t *Tuner) dispatchSignon(station string) error {
	if err := t.Runtime.ClearOffAir(station); err != nil {
		return err
	}
	return t.IPC.Load(t.Cfg.OffAirAnimation, 0)
}

// applyParentalPresentation installs the scramble filter and mutes
// audio for locked, un-unlocked channels, and mutes always-muted
// channels regardless of lock state.
func (t *Tuner) applyParentalPresentation(channel model.Channel, number int) {
	policy := t.Parental.Load()

	if policy.Locked(number) {
		unlocked, err := t.Runtime.ParentalUnlocked()
		if err != nil {
			t.Log.Warn().Err(err).Msg("check parental unlock state")
		}
		if !unlocked {
			if err := t.IPC.AddFilter(mpv.FilterLabelScramble, mpv.ScrambleFilterSpec()); err != nil {
				t.Log.Warn().Err(err).Msg("install scramble filter")
			}
			if err := t.IPC.SetProperty("mute", true); err != nil {
				t.Log.Warn().Err(err).Msg("mute locked channel")
			}
			return
		}
	}

	if policy.AlwaysMute(number) {
		if err := t.IPC.SetProperty("mute", true); err != nil {
			t.Log.Warn().Err(err).Msg("mute always-mute channel")
		}
	}
}
