package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsky/tonsky.me/internal/domain"
)

const minimal = `
page:
  url: https://tonsky.me/blog/
room:
  url: wss://presence.example/room
`

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "https://tonsky.me/blog/", cfg.Page.URL)
	assert.Equal(t, time.Second, cfg.Relay.SendInterval)
	assert.Equal(t, time.Second, cfg.Relay.ReconnectDelay)
	assert.Zero(t, cfg.Relay.ReconnectJitter)
	assert.Equal(t, 500*time.Millisecond, cfg.Roster.RemovalGrace)
	assert.Equal(t, time.Second, cfg.Cursor.RenderJitter)
	assert.Equal(t, "presence", cfg.Logging.Service)
	assert.Empty(t, cfg.HTTP.Addr)
}

func TestParse_Durations(t *testing.T) {
	cfg, err := Parse([]byte(minimal + `
relay:
  sendInterval: 250ms
  reconnectJitter: 3s
roster:
  removalGrace: 1s
`))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Relay.SendInterval)
	assert.Equal(t, 3*time.Second, cfg.Relay.ReconnectJitter)
	assert.Equal(t, time.Second, cfg.Roster.RemovalGrace)
	assert.Equal(t, 10*time.Second, cfg.Relay.DialTimeout, "unset keys keep defaults")
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing page url": "room:\n  url: wss://presence.example/room\n",
		"missing room url": "page:\n  url: https://tonsky.me/\n",
		"bad platform":     "page:\n  url: https://tonsky.me/\n  platform: amiga\nroom:\n  url: wss://presence.example/room\n",
		"bad level":        minimal + "logging:\n  level: loud\n",
		"bad backend":      minimal + "logging:\n  backend: syslog\n",
		"not yaml":         "page: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestPlatform(t *testing.T) {
	cfg := Default()

	cfg.Page.Platform = "off"
	_, ok := cfg.Platform()
	assert.False(t, ok)

	cfg.Page.Platform = "w"
	p, ok := cfg.Platform()
	assert.True(t, ok)
	assert.Equal(t, domain.PlatformWindows, p)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "wss://presence.example/room", cfg.Room.URL)
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
