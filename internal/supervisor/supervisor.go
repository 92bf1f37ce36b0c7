// Package supervisor owns process lifecycle: the single-instance lock,
// the player process, and the three watcher tasks (interstitial
// machine, EAS, command dispatch).
package supervisor

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/dispatch"
	"github.com/tsali/retro-tv/internal/eas"
	"github.com/tsali/retro-tv/internal/interstitial"
	"github.com/tsali/retro-tv/internal/tuner"
	"github.com/tsali/retro-tv/pkg/mpv"
)

// Supervisor is the process's single entry point once configuration is
// loaded and the collaborators are wired.
type Supervisor struct {
	Cfg          *config.Config
	Player       *mpv.Process
	IPC          *mpv.Client
	Tuner        *tuner.Tuner
	Interstitial *interstitial.Machine
	AlertRunner  *eas.Runner
	CrawlKeeper  *eas.CrawlKeeper
	Dispatcher   *dispatch.Dispatcher
	Log          zerolog.Logger

	lockPath string
	lockFile *os.File
}

// Run acquires the instance lock, launches the player, performs the
// initial tune, and runs the watchers until the player exits or ctx is
// cancelled.
func (s *Supervisor) Run(ctx context.Context, lockPath string, initialChannel int) error {
	s.lockPath = lockPath
	if err := s.acquireLock(); err != nil {
		return err
	}
	defer s.releaseLock()

	if err := s.Player.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	if err := s.Player.WaitForSocket(s.Cfg.ReadyTimeout); err != nil {
		s.Player.Stop()
		return fmt.Errorf("player never became ready: %w", err)
	}

	if err := s.Tuner.Tune(ctx, initialChannel); err != nil {
		s.Log.Warn().Err(err).Int("channel", initialChannel).Msg("initial tune failed")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return s.Interstitial.Run(gctx) })
	g.Go(func() error { return s.AlertRunner.Run(gctx) })
	g.Go(func() error { return s.CrawlKeeper.Run(gctx) })
	g.Go(func() error { return s.Dispatcher.Run(gctx) })

	select {
	case <-s.Player.Done():
		s.Log.Info().Msg("player process exited, shutting down watchers")
	case <-ctx.Done():
		s.Log.Info().Msg("shutdown requested, stopping player")
		s.Player.Stop()
	}
	cancel()

	if err := g.Wait(); err != nil {
		s.Log.Warn().Err(err).Msg("watcher exited with error")
	}
	return nil
}

func (s *Supervisor) acquireLock() error {
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("another headend instance holds the lock at %s", s.lockPath)
		}
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		f.Close()
		os.Remove(s.lockPath)
		return fmt.Errorf("write instance lock: %w", err)
	}
	s.lockFile = f
	return nil
}

func (s *Supervisor) releaseLock() {
	if s.lockFile == nil {
		return
	}
	s.lockFile.Close()
	_ = os.Remove(s.lockPath)
}
