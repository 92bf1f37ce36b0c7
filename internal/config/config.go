// Package config loads the daemon's own settings (paths, ports, timing
// constants) and watches the content-facing configuration files (channel
// table, schedule, parental policy, EAS config) for changes.
package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the daemon's own settings, loaded from environment
// variables (via a .env file, godotenv-style) and/or a settings file
// read by viper.
type Config struct {
	StateDir      string
	IndexDir      string
	ChannelTable  string
	ScheduleFile  string
	ParentalFile  string
	EASConfigFile string
	AlertQueueDir string
	AlertVideoDir string
	YouTubeFile   string

	MPVSocketPath    string
	EPGMusicSocket   string
	SnowVideoPath    string
	TestPatternImage string
	OffAirAnimation  string
	CountdownVideo   string
	BumperDir        string
	CommercialDir    string
	CrawlFontPath    string
	WeatherStreamURL string

	CountdownSeconds int

	ReadyTimeout time.Duration
}

// Load reads .env (if present) then the settings file at path (if
// nonempty), falling back to defaults for anything unset. Environment
// variables always win over the settings file, matching the teacher's
// godotenv-first convention.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, continuing with process environment")
	}

	v := viper.New()
	v.SetEnvPrefix("HEADEND")
	v.AutomaticEnv()

	v.SetDefault("state_dir", "/var/lib/headend/state")
	v.SetDefault("index_dir", "/var/lib/headend/index")
	v.SetDefault("channel_table", "/etc/headend/channels.tsv")
	v.SetDefault("schedule_file", "/etc/headend/schedule.json")
	v.SetDefault("parental_file", "/etc/headend/parental.json")
	v.SetDefault("eas_config_file", "/etc/headend/eas.json")
	v.SetDefault("youtube_file", "/etc/headend/youtube.json")
	v.SetDefault("alert_queue_dir", "/var/lib/headend/alerts/pending")
	v.SetDefault("alert_video_dir", "/var/lib/headend/alerts/video")
	v.SetDefault("mpv_socket_path", "/run/headend/mpv.sock")
	v.SetDefault("epg_music_socket", "/run/headend/mpv-music.sock")
	v.SetDefault("snow_video_path", "/usr/share/headend/snow.mp4")
	v.SetDefault("test_pattern_image", "/usr/share/headend/testpattern.png")
	v.SetDefault("off_air_animation", "/usr/share/headend/offair.mp4")
	v.SetDefault("countdown_video", "/usr/share/headend/countdown61.mp4")
	v.SetDefault("bumper_dir", "/usr/share/headend/bumpers")
	v.SetDefault("commercial_dir", "/usr/share/headend/commercials")
	v.SetDefault("crawl_font_path", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf")
	v.SetDefault("weather_stream_url", "udp://239.1.1.1:5000")
	v.SetDefault("countdown_seconds", 61)
	v.SetDefault("ready_timeout_seconds", 10)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings file %s: %w", path, err)
		}
	}

	return &Config{
		StateDir:         v.GetString("state_dir"),
		IndexDir:         v.GetString("index_dir"),
		ChannelTable:     v.GetString("channel_table"),
		ScheduleFile:     v.GetString("schedule_file"),
		ParentalFile:     v.GetString("parental_file"),
		EASConfigFile:    v.GetString("eas_config_file"),
		YouTubeFile:      v.GetString("youtube_file"),
		AlertQueueDir:    v.GetString("alert_queue_dir"),
		AlertVideoDir:    v.GetString("alert_video_dir"),
		MPVSocketPath:    v.GetString("mpv_socket_path"),
		EPGMusicSocket:   v.GetString("epg_music_socket"),
		SnowVideoPath:    v.GetString("snow_video_path"),
		TestPatternImage: v.GetString("test_pattern_image"),
		OffAirAnimation:  v.GetString("off_air_animation"),
		CountdownVideo:   v.GetString("countdown_video"),
		BumperDir:        v.GetString("bumper_dir"),
		CommercialDir:    v.GetString("commercial_dir"),
		CrawlFontPath:    v.GetString("crawl_font_path"),
		WeatherStreamURL: v.GetString("weather_stream_url"),
		CountdownSeconds: v.GetInt("countdown_seconds"),
		ReadyTimeout:     time.Duration(v.GetInt("ready_timeout_seconds")) * time.Second,
	}, nil
}

// ContentWatcher fires Reload whenever one of the watched content files
// (channel table, schedule, parental policy, EAS config) changes on
// disk, so the supervisor can pick up edits without a restart.
type ContentWatcher struct {
	watcher *fsnotify.Watcher
	Reload  chan string
}

// WatchContentFiles starts watching the given files for writes/renames.
// Callers should range over Reload and re-run the matching store loader.
func WatchContentFiles(paths ...string) (*ContentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := w.Add(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("cannot watch config file")
		}
	}

	cw := &ContentWatcher{watcher: w, Reload: make(chan string, 8)}
	go cw.run()
	return cw, nil
}

func (cw *ContentWatcher) run() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				close(cw.Reload)
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				cw.Reload <- event.Name
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (cw *ContentWatcher) Close() error {
	return cw.watcher.Close()
}
