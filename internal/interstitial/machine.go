// Package interstitial implements the half-hour interstitial state
// machine: alternating scheduled content with bumpers and commercials,
// and counting down to each half-hour boundary.
package interstitial

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/model"
	"github.com/tsali/retro-tv/internal/picker"
	"github.com/tsali/retro-tv/internal/registry"
	"github.com/tsali/retro-tv/internal/schedule"
	"github.com/tsali/retro-tv/internal/store"
	"github.com/tsali/retro-tv/internal/tuner"
	"github.com/tsali/retro-tv/pkg/mpv"
)

// State is one of the three interstitial machine states.
type State int

const (
	StateContent State = iota
	StateInterstitial
	StateCountdown
)

func (s State) String() string {
	switch s {
	case StateContent:
		return "content"
	case StateInterstitial:
		return "interstitial"
	case StateCountdown:
		return "countdown"
	default:
		return "unknown"
	}
}

var mtvStationPattern = regexp.MustCompile(`^MTV(\d{4})?$`)

const mtvStuckTicks = 5

// Machine owns the interstitial state and ticks once per second, driven
// by the supervisor.
type Machine struct {
	mu    sync.Mutex
	state State
	k     int

	lastMTVPositionInt int
	mtvStuckCount      int
	haveLastMTVSample  bool

	cfg      *config.Config
	ipc      *mpv.Client
	runtime  *store.RuntimeStore
	index    *store.IndexStore
	registry *registry.Registry
	schedule *config.Holder[model.ScheduleConfig]
	tuner    *tuner.Tuner
	now      func() time.Time
	rng      *rand.Rand
	log      zerolog.Logger
}

// New builds a Machine starting in StateContent.
func New(cfg *config.Config, ipc *mpv.Client, rt *store.RuntimeStore, idx *store.IndexStore, reg *registry.Registry,
	sched *config.Holder[model.ScheduleConfig], tn *tuner.Tuner, log zerolog.Logger) *Machine {
	return &Machine{
		state:    StateContent,
		cfg:      cfg,
		ipc:      ipc,
		runtime:  rt,
		index:    idx,
		registry: reg,
		schedule: sched,
		tuner:    tn,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
	}
}

// Run ticks the machine at 1 Hz until ctx is cancelled.
func (m *Machine) Run(ctx context.Context) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.tick(ctx); err != nil {
				m.log.Warn().Err(err).Msg("interstitial tick error")
			}
		}
	}
}

func (m *Machine) tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, err := m.runtime.EASActive()
	if err != nil {
		return err
	}
	if active {
		return nil
	}

	channelNumber, ok, err := m.runtime.CurrentChannel()
	if err != nil || !ok {
		return err
	}
	channel, ok := m.registry.Resolve(channelNumber)
	if !ok {
		return nil
	}
	station := strings.ToUpper(channel.Station)

	if station == "EPG" || station == "WEATHER" {
		return nil
	}

	isMTV := mtvStationPattern.MatchString(station)
	if isMTV {
		if err := m.mtvGuard(station); err != nil {
			return err
		}
	}

	eof, idle, err := m.playbackEnded()
	if err != nil {
		return err
	}
	if !eof && !idle {
		return nil
	}

	switch m.state {
	case StateContent:
		return m.fromContent(ctx, channel, station, isMTV)
	case StateInterstitial:
		return m.fromInterstitial(ctx, channel)
	case StateCountdown:
		return m.fromCountdown(ctx, channel)
	}
	return nil
}

// playbackEnded reports eof_reached/idle_active from the player.
func (m *Machine) playbackEnded() (eof, idle bool, err error) {
	eofData, err := m.ipc.GetProperty("eof-reached")
	if err != nil {
		return false, false, nil // connect failure: treat as no signal this tick
	}
	if b, ok := eofData.(bool); ok && b {
		eof = true
	}
	idleData, err := m.ipc.GetProperty("idle-active")
	if err == nil {
		if b, ok := idleData.(bool); ok && b {
			idle = true
		}
	}
	return eof, idle, nil
}

func (m *Machine) mtvGuard(station string) error {
	pos, ok, err := m.ipc.GetFloatProperty("time-pos")
	if err != nil || !ok {
		return nil
	}
	dur, ok, err := m.ipc.GetFloatProperty("duration")
	if err != nil || !ok {
		return nil
	}

	if dur-pos <= 7 {
		if meta, ok, err := m.runtime.MTVMetadataValue(); err == nil && ok {
			_ = m.ipc.Command("show-text", filepath.Base(meta.Path), "5000")
		}
	}

	posInt := int(pos)
	if m.haveLastMTVSample && posInt == m.lastMTVPositionInt {
		m.mtvStuckCount++
	} else {
		m.mtvStuckCount = 0
	}
	m.lastMTVPositionInt = posInt
	m.haveLastMTVSample = true

	if m.mtvStuckCount >= mtvStuckTicks {
		m.mtvStuckCount = 0
		m.haveLastMTVSample = false
		return m.pickNextMTV(station)
	}
	return nil
}

func (m *Machine) pickNextMTV(station string) error {
	idx, err := m.index.Load(station)
	if err != nil {
		return fmt.Errorf("MTV re-pick: %w", err)
	}
	pick, err := picker.MTV(idx.Items, m.now().Unix())
	if err != nil {
		return fmt.Errorf("MTV re-pick: %w", err)
	}
	if err := m.ipc.Load(pick.Path, float64(pick.OffsetSeconds)); err != nil {
		return err
	}
	return m.runtime.SetMTVMetadata(store.MTVMetadata{
		Path: pick.Path, DurationSeconds: pick.DurationSeconds, OffsetSeconds: pick.OffsetSeconds,
	})
}

func (m *Machine) fromContent(ctx context.Context, channel model.Channel, station string, isMTV bool) error {
	if isMTV {
		return m.pickNextMTV(station)
	}

	res, hasSlot := schedule.Resolve(m.schedule.Load(), channel.Number, m.now())
	if hasSlot && res.ShowID == model.ShowSignoff {
		off, err := m.runtime.OffAir(station)
		if err != nil {
			return err
		}
		if off {
			// The off-air animation already played (tuner sets the flag
			// when it starts it) and has now hit EOF: show the test
			// pattern for the remainder of the sign-off slot.
			return m.ipc.Load(m.cfg.TestPatternImage, 0)
		}
		if err := m.runtime.SetOffAir(station); err != nil {
			return err
		}
		return m.ipc.Load(m.cfg.OffAirAnimation, 0)
	}
	if hasSlot && res.ShowID == model.ShowSignon {
		return m.advanceEpisode(channel, res)
	}

	if m.interstitialsAllowed(station) {
		m.k = 0
		m.state = StateInterstitial
		return m.playBumper()
	}

	return m.tuner.Tune(ctx, channel.Number)
}

func (m *Machine) interstitialsAllowed(station string) bool {
	switch station {
	case "EPG", "WEATHER", "SIGNOFF", "SIGNON", "BUMPERS", "COMMERCIALS":
		return false
	}
	if mtvStationPattern.MatchString(station) {
		return false
	}
	return true
}

func (m *Machine) fromInterstitial(ctx context.Context, channel model.Channel) error {
	m.k++

	res, scheduledMode := schedule.Resolve(m.schedule.Load(), channel.Number, m.now())
	secondsToHalfHour := secondsToNextHalfHour(m.now())

	if scheduledMode {
		if secondsToHalfHour <= 60 {
			m.state = StateCountdown
			return m.playCountdown(secondsToHalfHour)
		}
		if m.k < 4 {
			if m.k%2 == 1 {
				return m.playCommercial()
			}
			return m.playBumper()
		}
		m.state = StateContent
		return m.advanceEpisode(channel, res)
	}

	switch {
	case m.k == 1:
		return m.playCommercial()
	case m.k == 2:
		if m.rng.Intn(2) == 0 {
			return m.playCommercial()
		}
		m.state = StateContent
		return m.tuner.Tune(ctx, channel.Number)
	default:
		m.state = StateContent
		return m.tuner.Tune(ctx, channel.Number)
	}
}

func (m *Machine) fromCountdown(ctx context.Context, channel model.Channel) error {
	m.state = StateContent
	res, _ := schedule.Resolve(m.schedule.Load(), channel.Number, m.now())
	return m.advanceEpisode(channel, res)
}

// advanceEpisode loads the next item in the current show, or falls
// back to a full retune when there is no scheduled show directory to
// walk (epoch fallback content, or the schedule just changed slots).
func (m *Machine) advanceEpisode(channel model.Channel, res schedule.Resolution) error {
	if res.Directory == "" {
		return m.tuner.Tune(context.Background(), channel.Number)
	}
	idx, err := m.index.Load(channel.Station)
	if err != nil {
		return fmt.Errorf("advance episode: %w", err)
	}
	items := picker.FilterByDirectory(idx.Items, res.Directory)
	if len(items) == 0 {
		return m.tuner.Tune(context.Background(), channel.Number)
	}
	current, _, err := m.runtime.LastContentPath()
	if err != nil {
		return fmt.Errorf("advance episode: %w", err)
	}
	pick, err := picker.NextSameShow(items, current)
	if err != nil {
		return fmt.Errorf("advance episode: %w", err)
	}
	if err := m.runtime.SetLastContentPath(pick.Path); err != nil {
		return fmt.Errorf("advance episode: %w", err)
	}
	return m.ipc.Load(pick.Path, 0)
}

func (m *Machine) playBumper() error {
	path, err := randomFile(m.cfg.BumperDir, m.rng)
	if err != nil {
		return fmt.Errorf("play bumper: %w", err)
	}
	return m.ipc.Load(path, 0)
}

func (m *Machine) playCommercial() error {
	path, err := randomFile(m.cfg.CommercialDir, m.rng)
	if err != nil {
		return fmt.Errorf("play commercial: %w", err)
	}
	return m.ipc.Load(path, 0)
}

// playCountdown seeks the fixed countdown artifact so the on-screen
// number matches the actual seconds remaining to the half hour.
func (m *Machine) playCountdown(remaining int) error {
	seek := clamp(m.cfg.CountdownSeconds-remaining, 0, m.cfg.CountdownSeconds-1)
	return m.ipc.Load(m.cfg.CountdownVideo, float64(seek))
}

func secondsToNextHalfHour(now time.Time) int {
	minute := now.Minute()
	second := now.Second()
	elapsedInHalf := (minute%30)*60 + second
	return 1800 - elapsedInHalf
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func randomFile(dir string, rng *rand.Rand) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no files in %s", dir)
	}
	return files[rng.Intn(len(files))], nil
}
