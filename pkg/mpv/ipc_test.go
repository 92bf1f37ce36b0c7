package mpv

import (
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal stand-in for mpv's JSON IPC socket: it decodes
// one command per connection, records it, and answers get_property
// requests from a small property table.
type fakeServer struct {
	mu         sync.Mutex
	commands   [][]interface{}
	properties map[string]interface{}
}

func startFakeServer(t *testing.T, properties map[string]interface{}) (*fakeServer, string) {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)

	f := &fakeServer{properties: properties}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go f.serve(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return f, sock
}

func (f *fakeServer) serve(conn net.Conn) {
	defer conn.Close()
	var req struct {
		Command []interface{} `json:"command"`
	}
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}

	f.mu.Lock()
	f.commands = append(f.commands, req.Command)
	var data interface{}
	if len(req.Command) == 2 && req.Command[0] == "get_property" {
		if name, ok := req.Command[1].(string); ok {
			data = f.properties[name]
		}
	}
	f.mu.Unlock()

	resp, _ := json.Marshal(map[string]interface{}{"data": data, "error": "success"})
	conn.Write(append(resp, '\n'))
}

func (f *fakeServer) commandsSeen() [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]interface{}, len(f.commands))
	copy(out, f.commands)
	return out
}

func TestGetFloatProperty_ReadsNumericValue(t *testing.T) {
	_, sock := startFakeServer(t, map[string]interface{}{"volume": 75.0})
	c := NewClient(sock)

	v, ok, err := c.GetFloatProperty("volume")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 75.0, v)
}

func TestGetFloatProperty_MissingIsNotOK(t *testing.T) {
	_, sock := startFakeServer(t, map[string]interface{}{})
	c := NewClient(sock)

	_, ok, err := c.GetFloatProperty("volume")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddFilter_SendsLabeledVfCommand(t *testing.T) {
	fake, sock := startFakeServer(t, nil)
	c := NewClient(sock)

	require.NoError(t, c.AddFilter(FilterLabelScramble, ScrambleFilterSpec()))

	cmds := fake.commandsSeen()
	require.Len(t, cmds, 1)
	assert.Equal(t, []interface{}{"vf", "add", "@parental_scramble:" + ScrambleFilterSpec()}, cmds[0])
}

func TestRemoveFilter_SendsLabeledVfCommand(t *testing.T) {
	fake, sock := startFakeServer(t, nil)
	c := NewClient(sock)

	require.NoError(t, c.RemoveFilter(FilterLabelCrawl))

	cmds := fake.commandsSeen()
	require.Len(t, cmds, 1)
	assert.Equal(t, []interface{}{"vf", "remove", "@eas_crawl"}, cmds[0])
}

func TestLoad_ZeroSeekSkipsSeekCommand(t *testing.T) {
	fake, sock := startFakeServer(t, map[string]interface{}{"path": "/videos/a.mp4", "duration": 30.0})
	c := NewClient(sock)

	require.NoError(t, c.Load("/videos/a.mp4", 0))

	for _, cmd := range fake.commandsSeen() {
		if len(cmd) > 0 {
			assert.NotEqual(t, "seek", cmd[0])
		}
	}
}

func TestLoad_PositiveSeekIssuesSeekCommand(t *testing.T) {
	fake, sock := startFakeServer(t, map[string]interface{}{"path": "/videos/b.mp4", "duration": 120.0})
	c := NewClient(sock)

	require.NoError(t, c.Load("/videos/b.mp4", 42))

	var sawSeek bool
	for _, cmd := range fake.commandsSeen() {
		if len(cmd) > 0 && cmd[0] == "seek" {
			sawSeek = true
			assert.InDelta(t, 42.0, cmd[1], 0.001)
		}
	}
	assert.True(t, sawSeek)
}
