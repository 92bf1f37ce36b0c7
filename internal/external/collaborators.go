// Package external wraps the out-of-core collaborators the controller
// talks to only through a named contract: the EPG renderer, the
// YouTube live-stream resolver, and the EAS alert-video generator. Each
// is a separately managed external program; the controller's job is
// only to launch/invoke it and interpret its result.
package external

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tsali/retro-tv/internal/model"
)

// EPGRenderer owns the lifecycle of the electronic program guide's
// refresh loop, a long-lived external process the controller starts
// when tuning to the EPG station and stops when tuning away.
type EPGRenderer struct {
	command string
	args    []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewEPGRenderer builds a renderer that shells out to command/args
// whenever started.
func NewEPGRenderer(command string, args ...string) *EPGRenderer {
	return &EPGRenderer{command: command, args: args}
}

// Start launches the refresh loop if it isn't already running.
func (r *EPGRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return nil
	}
	if r.command == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start EPG renderer: %w", err)
	}
	r.cmd = cmd
	go func() {
		_ = cmd.Wait()
		r.mu.Lock()
		if r.cmd == cmd {
			r.cmd = nil
		}
		r.mu.Unlock()
	}()
	return nil
}

// Stop terminates the refresh loop if running.
func (r *EPGRenderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}
	_ = r.cmd.Process.Kill()
	r.cmd = nil
}

// YouTubeResolver resolves a station's configured video/channel ID to
// a currently live stream URL via an external resolver program.
type YouTubeResolver struct {
	command string
}

// NewYouTubeResolver wraps an external resolver invoked as
// `command <stationID>`, expected to print the resolved URL on stdout.
func NewYouTubeResolver(command string) *YouTubeResolver {
	return &YouTubeResolver{command: command}
}

// Resolve returns the live stream URL for stationID.
func (r *YouTubeResolver) Resolve(ctx context.Context, stationID string) (string, error) {
	if r.command == "" {
		return "", fmt.Errorf("youtube resolver: no resolver command configured")
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command, stationID)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("resolve youtube stream for %s: %w", stationID, err)
	}
	url := strings.TrimSpace(out.String())
	if url == "" {
		return "", fmt.Errorf("resolve youtube stream for %s: empty result", stationID)
	}
	return url, nil
}

// AlertVideoGenerator renders an alert descriptor into a playable
// video file via an external generator program.
type AlertVideoGenerator struct {
	command string
	outDir  string
}

// NewAlertVideoGenerator wraps an external generator invoked as
// `command <outfile> <event> <headline> <areas...>`.
func NewAlertVideoGenerator(command, outDir string) *AlertVideoGenerator {
	return &AlertVideoGenerator{command: command, outDir: outDir}
}

// Generate renders desc into a new video file under outDir and returns
// its path.
func (g *AlertVideoGenerator) Generate(ctx context.Context, desc model.AlertDescriptor) (string, error) {
	if g.command == "" {
		return "", fmt.Errorf("alert video generator: no generator command configured")
	}
	outPath := fmt.Sprintf("%s/%s.mp4", g.outDir, uuid.NewString())
	args := append([]string{outPath, desc.Event, desc.Headline}, desc.Areas...)
	cmd := exec.CommandContext(ctx, g.command, args...)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("generate alert video: %w", err)
	}
	return outPath, nil
}
