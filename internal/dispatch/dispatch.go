// Package dispatch polls the three viewer command surfaces (channel
// change, mute, volume) and applies them.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/model"
	"github.com/tsali/retro-tv/internal/registry"
	"github.com/tsali/retro-tv/internal/store"
	"github.com/tsali/retro-tv/internal/tuner"
	"github.com/tsali/retro-tv/pkg/mpv"
)

const pollInterval = 100 * time.Millisecond

// Dispatcher owns the three 10 Hz polling loops.
type Dispatcher struct {
	Runtime  *store.RuntimeStore
	IPC      *mpv.Client
	Registry *registry.Registry
	Parental *config.Holder[model.ParentalPolicy]
	Tuner    *tuner.Tuner
	Log      zerolog.Logger
}

// Run starts all three pollers and blocks until ctx is cancelled or one
// of them returns an error.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.pollLoop(ctx, d.tickChannelCommand) })
	g.Go(func() error { return d.pollLoop(ctx, d.tickMute) })
	g.Go(func() error { return d.pollLoop(ctx, d.tickVolume) })
	return g.Wait()
}

func (d *Dispatcher) pollLoop(ctx context.Context, tick func(context.Context) error) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := tick(ctx); err != nil {
				d.Log.Warn().Err(err).Msg("dispatch tick error")
			}
		}
	}
}

func (d *Dispatcher) tickChannelCommand(ctx context.Context) error {
	cmd, ok, err := d.Runtime.ConsumeChannelCommand()
	if err != nil || !ok {
		return err
	}

	currentNumber, _, err := d.Runtime.CurrentChannel()
	if err != nil {
		return err
	}

	target, unlockedInPlace, err := d.resolveTarget(cmd, currentNumber)
	if err != nil {
		d.Log.Warn().Err(err).Str("command", cmd).Msg("channel command ignored")
		return nil
	}
	if unlockedInPlace {
		return nil
	}

	if err := d.Tuner.Tune(ctx, target); err != nil {
		return fmt.Errorf("apply channel command %q: %w", cmd, err)
	}
	if channel, ok := d.Registry.Resolve(target); ok {
		_ = d.IPC.Command("show-text", fmt.Sprintf("CH %d  %s", target, channel.Station), "3000")
	}
	return nil
}

// resolveTarget interprets one channel-command payload. unlockedInPlace
// is true when the command was consumed to unlock parental control
// without retuning.
func (d *Dispatcher) resolveTarget(cmd string, current int) (target int, unlockedInPlace bool, err error) {
	switch cmd {
	case "up":
		n, err := d.Registry.Up(current)
		return n, false, err
	case "down":
		n, err := d.Registry.Down(current)
		return n, false, err
	}

	n, err := strconv.Atoi(cmd)
	if err != nil {
		return 0, false, fmt.Errorf("not a valid channel command: %q", cmd)
	}

	policy := d.Parental.Load()
	if policy.Locked(current) {
		unlocked, err := d.Runtime.ParentalUnlocked()
		if err != nil {
			return 0, false, err
		}
		if !unlocked {
			if cmd == policy.PIN {
				if err := d.Runtime.SetParentalUnlocked(); err != nil {
					return 0, false, err
				}
				if err := d.IPC.RemoveFilter(mpv.FilterLabelScramble); err != nil {
					d.Log.Debug().Err(err).Msg("remove scramble filter on unlock")
				}
				_ = d.IPC.SetProperty("mute", false)
				return 0, true, nil
			}
			// PIN mismatch: fall through and treat the digits as a channel number.
		}
	}
	return n, false, nil
}

func (d *Dispatcher) tickMute(context.Context) error {
	toggled, err := d.Runtime.ConsumeMuteToggle()
	if err != nil || !toggled {
		return err
	}
	muted, err := d.IPC.GetProperty("mute")
	if err != nil {
		return err
	}
	isMuted, _ := muted.(bool)
	return d.IPC.SetProperty("mute", !isMuted)
}

func (d *Dispatcher) tickVolume(context.Context) error {
	delta, ok, err := d.Runtime.ConsumeVolumeDelta()
	if err != nil || !ok {
		return err
	}
	if err := d.IPC.SetProperty("mute", false); err != nil {
		return err
	}
	current, ok, err := d.IPC.GetFloatProperty("volume")
	if err != nil {
		return err
	}
	if !ok {
		current = 0
	}
	return d.IPC.SetProperty("volume", current+float64(delta))
}
