// Command headend is the broadcast head-end controller daemon: it
// drives a single mpv instance, deciding what plays on the current
// channel at every moment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/dispatch"
	"github.com/tsali/retro-tv/internal/eas"
	"github.com/tsali/retro-tv/internal/external"
	"github.com/tsali/retro-tv/internal/interstitial"
	"github.com/tsali/retro-tv/internal/logging"
	"github.com/tsali/retro-tv/internal/model"
	"github.com/tsali/retro-tv/internal/registry"
	"github.com/tsali/retro-tv/internal/store"
	"github.com/tsali/retro-tv/internal/supervisor"
	"github.com/tsali/retro-tv/internal/tuner"
	"github.com/tsali/retro-tv/pkg/mpv"
)

var (
	settingsFile string
	debug        bool
	lockPath     string

	epgRendererCmd  string
	youtubeResolver string
	alertGenerator  string
)

var rootCmd = &cobra.Command{
	Use:   "headend",
	Short: "Broadcast head-end controller",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the head-end controller",
	RunE:  runHeadend,
}

func init() {
	runCmd.Flags().StringVar(&settingsFile, "config", "", "path to a settings file (optional; env vars and defaults otherwise)")
	runCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	runCmd.Flags().StringVar(&lockPath, "lock-file", "/run/headend/headend.lock", "single-instance lock file path")
	runCmd.Flags().StringVar(&epgRendererCmd, "epg-renderer", "", "external EPG renderer command")
	runCmd.Flags().StringVar(&youtubeResolver, "youtube-resolver", "", "external YouTube live-stream resolver command")
	runCmd.Flags().StringVar(&alertGenerator, "alert-generator", "", "external EAS alert video generator command")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runHeadend(cmd *cobra.Command, args []string) error {
	logging.Init(debug)
	log := logging.For("main")

	cfg, err := config.Load(settingsFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	channels, err := store.LoadChannelTable(cfg.ChannelTable)
	if err != nil {
		return fmt.Errorf("load channel table: %w", err)
	}
	reg := registry.New(channels)

	scheduleCfg, err := store.LoadScheduleConfig(cfg.ScheduleFile)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	scheduleHolder := config.NewHolder(scheduleCfg)

	parentalCfg, err := store.LoadParentalConfig(cfg.ParentalFile)
	if err != nil {
		return fmt.Errorf("load parental config: %w", err)
	}
	parentalHolder := config.NewHolder(parentalCfg)

	easCfg, err := store.LoadEASConfig(cfg.EASConfigFile)
	if err != nil {
		return fmt.Errorf("load EAS config: %w", err)
	}
	easHolder := config.NewHolder(easCfg)

	youtubeStations, err := store.LoadYouTubeStations(cfg.YouTubeFile)
	if err != nil {
		return fmt.Errorf("load youtube stations: %w", err)
	}
	youtubeHolder := config.NewHolder(youtubeStations)

	rt, err := store.NewRuntimeStore(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("open runtime store: %w", err)
	}
	idx := store.NewIndexStore(cfg.IndexDir)
	alerts := store.NewAlertQueue(cfg.AlertQueueDir)

	player := mpv.NewProcess(cfg.MPVSocketPath)
	ipc := mpv.NewClient(cfg.MPVSocketPath)
	musicProcess := mpv.NewProcess(cfg.EPGMusicSocket)

	epgRenderer := external.NewEPGRenderer(epgRendererCmd)
	ytResolver := external.NewYouTubeResolver(youtubeResolver)
	alertGen := external.NewAlertVideoGenerator(alertGenerator, cfg.AlertVideoDir)

	tn := tuner.New(cfg, ipc, reg, rt, idx, scheduleHolder, parentalHolder, youtubeHolder, epgRenderer, ytResolver, logging.For("tuner"))
	tn.MusicProcess = musicProcess

	machine := interstitial.New(cfg, ipc, rt, idx, reg, scheduleHolder, tn, logging.For("interstitial"))

	alertRunner := &eas.Runner{
		Cfg: cfg, IPC: ipc, Runtime: rt, Alerts: alerts, EASConfig: easHolder,
		Registry: reg, Generator: alertGen, Tuner: tn, Log: logging.For("eas-runner"),
	}
	crawlKeeper := &eas.CrawlKeeper{Cfg: cfg, IPC: ipc, Runtime: rt, Log: logging.For("eas-crawl")}

	dispatcher := &dispatch.Dispatcher{
		Runtime: rt, IPC: ipc, Registry: reg, Parental: parentalHolder, Tuner: tn, Log: logging.For("dispatch"),
	}

	watcher, err := config.WatchContentFiles(cfg.ChannelTable, cfg.ScheduleFile, cfg.ParentalFile, cfg.EASConfigFile, cfg.YouTubeFile)
	if err != nil {
		log.Warn().Err(err).Msg("could not start config file watcher")
	} else {
		go watchReload(watcher, cfg, reg, scheduleHolder, parentalHolder, easHolder, youtubeHolder, log)
	}

	sup := &supervisor.Supervisor{
		Cfg: cfg, Player: player, IPC: ipc, Tuner: tn, Interstitial: machine,
		AlertRunner: alertRunner, CrawlKeeper: crawlKeeper, Dispatcher: dispatcher, Log: logging.For("supervisor"),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	initialChannel, ok, err := rt.CurrentChannel()
	if err != nil {
		return fmt.Errorf("read persisted current channel: %w", err)
	}
	if !ok {
		enabled := reg.ListEnabled()
		if len(enabled) == 0 {
			return fmt.Errorf("no enabled channels in %s", cfg.ChannelTable)
		}
		initialChannel = enabled[0]
	}

	return sup.Run(ctx, lockPath, initialChannel)
}

func watchReload(w *config.ContentWatcher, cfg *config.Config, reg *registry.Registry,
	scheduleHolder *config.Holder[model.ScheduleConfig], parentalHolder *config.Holder[model.ParentalPolicy],
	easHolder *config.Holder[model.EASConfig], youtubeHolder *config.Holder[model.YouTubeStations], log zerolog.Logger) {
	for path := range w.Reload {
		switch path {
		case cfg.ChannelTable:
			if channels, err := store.LoadChannelTable(cfg.ChannelTable); err == nil {
				reg.Replace(channels)
			} else {
				log.Warn().Err(err).Msg("reload channel table failed")
			}
		case cfg.ScheduleFile:
			if sc, err := store.LoadScheduleConfig(cfg.ScheduleFile); err == nil {
				scheduleHolder.Store(sc)
			} else {
				log.Warn().Err(err).Msg("reload schedule failed")
			}
		case cfg.ParentalFile:
			if pc, err := store.LoadParentalConfig(cfg.ParentalFile); err == nil {
				parentalHolder.Store(pc)
			} else {
				log.Warn().Err(err).Msg("reload parental config failed")
			}
		case cfg.EASConfigFile:
			if ec, err := store.LoadEASConfig(cfg.EASConfigFile); err == nil {
				easHolder.Store(ec)
			} else {
				log.Warn().Err(err).Msg("reload EAS config failed")
			}
		case cfg.YouTubeFile:
			if yt, err := store.LoadYouTubeStations(cfg.YouTubeFile); err == nil {
				youtubeHolder.Store(yt)
			} else {
				log.Warn().Err(err).Msg("reload youtube stations failed")
			}
		}
	}
}
