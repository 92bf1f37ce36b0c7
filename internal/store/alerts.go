package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tsali/retro-tv/internal/model"
)

// AlertQueue reads and consumes alert-descriptor files dropped into a
// pending directory by the external alert poller. The controller is the
// sole consumer of this directory; it never creates the descriptors,
// only deletes them once handled.
type AlertQueue struct {
	Dir string
}

// NewAlertQueue builds a queue rooted at dir.
func NewAlertQueue(dir string) *AlertQueue {
	return &AlertQueue{Dir: dir}
}

// Pending lists pending alert file paths sorted by filename, oldest
// first by the poller's naming convention.
func (q *AlertQueue) Pending() ([]string, error) {
	entries, err := os.ReadDir(q.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list pending alerts: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(q.Dir, n)
	}
	return paths, nil
}

type alertDoc struct {
	Event    string   `json:"event"`
	Areas    []string `json:"areas"`
	Headline string   `json:"headline"`
	Expires  string   `json:"expires"`
}

// Read parses one alert descriptor file.
func (q *AlertQueue) Read(path string) (model.AlertDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.AlertDescriptor{}, fmt.Errorf("read alert %s: %w", path, err)
	}
	var doc alertDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.AlertDescriptor{}, fmt.Errorf("parse alert %s: %w", path, err)
	}
	desc := model.AlertDescriptor{Event: doc.Event, Areas: doc.Areas, Headline: doc.Headline}
	if doc.Expires != "" {
		expires, err := time.Parse(time.RFC3339, doc.Expires)
		if err != nil {
			return model.AlertDescriptor{}, fmt.Errorf("parse alert %s expires: %w", path, err)
		}
		desc.Expires = expires
	}
	return desc, nil
}

// Delete removes an alert file. Missing files are not an error: two
// watchers racing to consume the same alert is expected.
func (q *AlertQueue) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete alert %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every currently pending alert, used when the tuned
// station is EAS-exempt.
func (q *AlertQueue) DeleteAll() error {
	pending, err := q.Pending()
	if err != nil {
		return err
	}
	for _, p := range pending {
		if err := q.Delete(p); err != nil {
			return err
		}
	}
	return nil
}
