package eas

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/store"
	"github.com/tsali/retro-tv/pkg/mpv"
)

// CrawlKeeper is the second EAS watcher: it keeps the crawl overlay
// alive across any tune/load that discards player filters, and expires
// it once its window has passed.
type CrawlKeeper struct {
	Cfg     *config.Config
	IPC     *mpv.Client
	Runtime *store.RuntimeStore
	Now     func() time.Time
	Log     zerolog.Logger
}

// Run polls at roughly 3 s intervals until ctx is cancelled.
func (k *CrawlKeeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := k.tick(); err != nil {
				k.Log.Warn().Err(err).Msg("crawl keeper tick error")
			}
		}
	}
}

func (k *CrawlKeeper) now() time.Time {
	if k.Now != nil {
		return k.Now()
	}
	return time.Now()
}

func (k *CrawlKeeper) tick() error {
	active, err := k.Runtime.EASCrawlActive()
	if err != nil || !active {
		return err
	}

	text, expiry, ok, err := k.Runtime.EASCrawl()
	if err != nil {
		return err
	}
	if !ok || !k.now().Before(expiry) {
		if err := k.IPC.RemoveFilter(mpv.FilterLabelCrawl); err != nil {
			k.Log.Debug().Err(err).Msg("remove expired crawl filter")
		}
		if err := k.Runtime.ClearEASCrawlActive(); err != nil {
			return err
		}
		return k.Runtime.ClearEASCrawl()
	}

	return k.IPC.AddFilter(mpv.FilterLabelCrawl, mpv.CrawlFilterSpec(text, k.Cfg.CrawlFontPath))
}
