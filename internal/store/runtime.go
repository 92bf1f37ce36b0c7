package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// RuntimeStore is the controller's exclusive file-backed message bus: the
// current channel, pending command-surface files, per-session parental
// unlock, per-channel off-air flags, EAS state, and MTV overlay metadata.
// Every write goes through renameio so a concurrent reader (the web
// remote, a status poller) never observes a half-written file — the
// controller is the sole writer under this root, but that doesn't make
// torn reads by others harmless.
type RuntimeStore struct {
	root string
}

// NewRuntimeStore roots a runtime store at dir, creating it if absent.
func NewRuntimeStore(dir string) (*RuntimeStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state root %s: %w", dir, err)
	}
	return &RuntimeStore{root: dir}, nil
}

func (s *RuntimeStore) path(name string) string {
	return filepath.Join(s.root, name)
}

func (s *RuntimeStore) writeString(name, value string) error {
	if err := renameio.WriteFile(s.path(name), []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *RuntimeStore) readString(name string) (string, bool, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func (s *RuntimeStore) exists(name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", name, err)
}

func (s *RuntimeStore) create(name string) error {
	return s.writeString(name, "")
}

func (s *RuntimeStore) remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// --- current channel -------------------------------------------------

const fileCurrentChannel = "current_channel"

// CurrentChannel returns the persisted current channel, or ok=false if
// none has ever been set.
func (s *RuntimeStore) CurrentChannel() (number int, ok bool, err error) {
	raw, exists, err := s.readString(fileCurrentChannel)
	if err != nil || !exists || raw == "" {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse current channel: %w", err)
	}
	return n, true, nil
}

// SetCurrentChannel persists the channel currently tuned.
func (s *RuntimeStore) SetCurrentChannel(number int) error {
	return s.writeString(fileCurrentChannel, strconv.Itoa(number))
}

// --- command surface (section 6) -------------------------------------

const (
	fileChannelCmd = "channel_cmd"
	fileVolumeCmd  = "volume"
	fileMuteCmd    = "mute"
)

// ConsumeChannelCommand reads and deletes the pending channel command
// ("up", "down", or a decimal string). ok is false when nothing is pending.
func (s *RuntimeStore) ConsumeChannelCommand() (cmd string, ok bool, err error) {
	raw, exists, err := s.readString(fileChannelCmd)
	if err != nil || !exists {
		return "", false, err
	}
	if err := s.remove(fileChannelCmd); err != nil {
		return "", false, err
	}
	if raw == "" {
		return "", false, nil
	}
	return raw, true, nil
}

// WriteChannelCommand is used by operator tooling (cmd/headendctl) in
// place of the web remote.
func (s *RuntimeStore) WriteChannelCommand(cmd string) error {
	return s.writeString(fileChannelCmd, cmd)
}

// ConsumeMuteToggle reports whether a mute toggle is pending and clears it.
func (s *RuntimeStore) ConsumeMuteToggle() (bool, error) {
	present, err := s.exists(fileMuteCmd)
	if err != nil || !present {
		return false, err
	}
	return true, s.remove(fileMuteCmd)
}

// WriteMuteToggle requests a mute toggle.
func (s *RuntimeStore) WriteMuteToggle() error {
	return s.create(fileMuteCmd)
}

// ConsumeVolumeDelta reads and clears a pending signed volume delta.
func (s *RuntimeStore) ConsumeVolumeDelta() (delta int, ok bool, err error) {
	raw, exists, err := s.readString(fileVolumeCmd)
	if err != nil || !exists {
		return 0, false, err
	}
	if err := s.remove(fileVolumeCmd); err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse volume delta %q: %w", raw, err)
	}
	return n, true, nil
}

// WriteVolumeDelta requests a signed volume adjustment.
func (s *RuntimeStore) WriteVolumeDelta(delta int) error {
	return s.writeString(fileVolumeCmd, strconv.Itoa(delta))
}

// --- parental unlock ---------------------------------------------------

const fileParentalUnlocked = "parental_unlocked"

// ParentalUnlocked reports whether the session-scoped unlock flag is set.
func (s *RuntimeStore) ParentalUnlocked() (bool, error) {
	return s.exists(fileParentalUnlocked)
}

// SetParentalUnlocked sets the session unlock flag.
func (s *RuntimeStore) SetParentalUnlocked() error {
	return s.create(fileParentalUnlocked)
}

// ClearParentalUnlocked clears the session unlock flag (auto-lock re-arm).
func (s *RuntimeStore) ClearParentalUnlocked() error {
	return s.remove(fileParentalUnlocked)
}

// --- per-channel off-air flag -------------------------------------------

func offAirFile(station string) string {
	return "offair_" + strings.ToUpper(station)
}

// OffAir reports whether station's off-air flag is set.
func (s *RuntimeStore) OffAir(station string) (bool, error) {
	return s.exists(offAirFile(station))
}

// SetOffAir marks station off-air (its sign-off animation has been started).
func (s *RuntimeStore) SetOffAir(station string) error {
	return s.create(offAirFile(station))
}

// ClearOffAir clears station's off-air flag (on sign-on or resumed content).
func (s *RuntimeStore) ClearOffAir(station string) error {
	return s.remove(offAirFile(station))
}

// ClearAllOffAirExcept clears every off-air flag except the given station's,
// used by the tuner's pre-transition teardown on every tune.
func (s *RuntimeStore) ClearAllOffAirExcept(station string) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("scan state root: %w", err)
	}
	keep := offAirFile(station)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "offair_") && name != keep {
			if err := s.remove(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- EAS state -----------------------------------------------------------

const (
	fileEASActive      = "eas_active"
	fileEASResumeChan  = "eas_resume_channel"
	fileEASCrawlText   = "eas_crawl_text"
	fileEASCrawlExpiry = "eas_crawl_expiry"
	fileEASCrawlActive = "eas_crawl_active"
)

// EASActive reports whether the alert runner currently owns playback.
func (s *RuntimeStore) EASActive() (bool, error) {
	return s.exists(fileEASActive)
}

// SetEASActive sets the EAS-active flag, blocking the interstitial machine.
func (s *RuntimeStore) SetEASActive() error {
	return s.create(fileEASActive)
}

// ClearEASActive clears the EAS-active flag.
func (s *RuntimeStore) ClearEASActive() error {
	return s.remove(fileEASActive)
}

// SetEASResumeChannel persists the channel to retune to after the alert.
func (s *RuntimeStore) SetEASResumeChannel(number int) error {
	return s.writeString(fileEASResumeChan, strconv.Itoa(number))
}

// EASResumeChannel reads the resume channel, ok=false if unset.
func (s *RuntimeStore) EASResumeChannel() (number int, ok bool, err error) {
	raw, exists, err := s.readString(fileEASResumeChan)
	if err != nil || !exists || raw == "" {
		return 0, false, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse EAS resume channel: %w", err)
	}
	return n, true, nil
}

// SetEASCrawl persists the crawl text and its wall-clock expiry.
func (s *RuntimeStore) SetEASCrawl(text string, expires time.Time) error {
	if err := s.writeString(fileEASCrawlText, text); err != nil {
		return err
	}
	return s.writeString(fileEASCrawlExpiry, expires.UTC().Format(time.RFC3339))
}

// EASCrawl reads the crawl text and expiry, ok=false if either is missing.
func (s *RuntimeStore) EASCrawl() (text string, expires time.Time, ok bool, err error) {
	text, textOK, err := s.readString(fileEASCrawlText)
	if err != nil || !textOK {
		return "", time.Time{}, false, err
	}
	raw, expOK, err := s.readString(fileEASCrawlExpiry)
	if err != nil || !expOK {
		return "", time.Time{}, false, err
	}
	expires, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("parse EAS crawl expiry: %w", err)
	}
	return text, expires, true, nil
}

// ClearEASCrawl deletes the crawl text and expiry files.
func (s *RuntimeStore) ClearEASCrawl() error {
	if err := s.remove(fileEASCrawlText); err != nil {
		return err
	}
	return s.remove(fileEASCrawlExpiry)
}

// SetEASCrawlActive marks the crawl overlay as installed.
func (s *RuntimeStore) SetEASCrawlActive() error {
	return s.create(fileEASCrawlActive)
}

// EASCrawlActive reports whether the crawl overlay flag is set.
func (s *RuntimeStore) EASCrawlActive() (bool, error) {
	return s.exists(fileEASCrawlActive)
}

// ClearEASCrawlActive clears the crawl overlay flag.
func (s *RuntimeStore) ClearEASCrawlActive() error {
	return s.remove(fileEASCrawlActive)
}

// --- MTV overlay metadata --------------------------------------------------

const fileMTVMeta = "mtv_current"

// MTVMetadata is the currently playing MTV item's display metadata, used
// by the end-of-video overlay.
type MTVMetadata struct {
	Path            string `json:"path"`
	DurationSeconds int    `json:"duration_seconds"`
	OffsetSeconds   int    `json:"offset_seconds"`
}

// SetMTVMetadata persists the current MTV item's overlay metadata.
func (s *RuntimeStore) SetMTVMetadata(meta MTVMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal MTV metadata: %w", err)
	}
	if err := renameio.WriteFile(s.path(fileMTVMeta), data, 0o644); err != nil {
		return fmt.Errorf("write MTV metadata: %w", err)
	}
	return nil
}

// MTVMetadataValue reads the current MTV item's metadata, ok=false if unset.
func (s *RuntimeStore) MTVMetadataValue() (meta MTVMetadata, ok bool, err error) {
	data, err := os.ReadFile(s.path(fileMTVMeta))
	if err != nil {
		if os.IsNotExist(err) {
			return MTVMetadata{}, false, nil
		}
		return MTVMetadata{}, false, fmt.Errorf("read MTV metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return MTVMetadata{}, false, fmt.Errorf("parse MTV metadata: %w", err)
	}
	return meta, true, nil
}

// ClearMTVMetadata removes the MTV overlay metadata.
func (s *RuntimeStore) ClearMTVMetadata() error {
	return s.remove(fileMTVMeta)
}

// --- last scheduled content item ---------------------------------------

const fileLastContentPath = "last_content_path"

// LastContentPath returns the absolute path of the most recently loaded
// scheduled show item, ok=false if none has been recorded yet.
func (s *RuntimeStore) LastContentPath() (path string, ok bool, err error) {
	return s.readString(fileLastContentPath)
}

// SetLastContentPath persists the path of a scheduled show item as it is
// loaded, so the interstitial machine can resume from it at the next
// episode boundary regardless of who dispatched it (tuner or machine).
func (s *RuntimeStore) SetLastContentPath(path string) error {
	return s.writeString(fileLastContentPath, path)
}
