package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gookit/validate"
	"gopkg.in/yaml.v3"

	"github.com/tonsky/tonsky.me/internal/domain"
)

type Page struct {
	URL      string `yaml:"url" validate:"required|fullUrl"`
	Platform string `yaml:"platform" validate:"in:auto,off,m,w,l"` // auto detects from GOOS
	Width    int    `yaml:"width" validate:"min:1"`
	Height   int    `yaml:"height" validate:"min:1"`
}

type Room struct {
	URL            string        `yaml:"url" validate:"required|fullUrl"`
	ReconnectDelay time.Duration `yaml:"reconnectDelay" validate:"min:1"`
}

type Relay struct {
	URL             string        `yaml:"url" validate:"fullUrl"` // empty: same host as the page
	SendInterval    time.Duration `yaml:"sendInterval" validate:"min:1"`
	ReconnectDelay  time.Duration `yaml:"reconnectDelay" validate:"min:1"`
	ReconnectJitter time.Duration `yaml:"reconnectJitter" validate:"min:0"`
	DialTimeout     time.Duration `yaml:"dialTimeout" validate:"min:1"`
	PingEvery       time.Duration `yaml:"pingEvery" validate:"min:0"`
}

type Roster struct {
	RemovalGrace time.Duration `yaml:"removalGrace" validate:"min:1"`
}

type Cursor struct {
	RenderJitter time.Duration `yaml:"renderJitter" validate:"min:0"`
}

type Geo struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint" validate:"fullUrl"`
	Timeout  time.Duration `yaml:"timeout" validate:"min:1"`
}

type HTTP struct {
	Addr string `yaml:"addr"` // empty disables diagnostics
}

type Logging struct {
	Env       string `yaml:"env" validate:"in:dev,stage,prod"`
	Service   string `yaml:"service"`
	Version   string `yaml:"version"`
	Backend   string `yaml:"backend" validate:"in:std,zap"`
	Level     string `yaml:"level" validate:"in:debug,info,warn,error"`
	AddSource bool   `yaml:"addSource"`
	Debug     bool   `yaml:"debug"`
}

type Config struct {
	Page    Page    `yaml:"page"`
	Room    Room    `yaml:"room"`
	Relay   Relay   `yaml:"relay"`
	Roster  Roster  `yaml:"roster"`
	Cursor  Cursor  `yaml:"cursor"`
	Geo     Geo     `yaml:"geo"`
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
}

// LoadConfig reads the file named by CONFIG_PATH, ./config/config.yaml by default.
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default is the configuration every file is layered on.
func Default() *Config {
	return &Config{
		Page: Page{Platform: "auto", Width: 1280, Height: 800},
		Room: Room{ReconnectDelay: 2 * time.Second},
		Relay: Relay{
			SendInterval:   time.Second,
			ReconnectDelay: time.Second,
			DialTimeout:    10 * time.Second,
			PingEvery:      15 * time.Second,
		},
		Roster: Roster{RemovalGrace: 500 * time.Millisecond},
		Cursor: Cursor{RenderJitter: time.Second},
		Geo: Geo{
			Enabled:  true,
			Endpoint: "http://ip-api.com/json/?fields=country,countryCode,city",
			Timeout:  5 * time.Second,
		},
		Logging: Logging{
			Env:     "dev",
			Service: "presence",
			Version: "v0.1.0",
			Backend: "std",
			Level:   "info",
		},
	}
}

func (c *Config) validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}
	return nil
}

// Platform resolves page.platform. ok is false when cursor sharing is off.
func (c *Config) Platform() (domain.Platform, bool) {
	switch c.Page.Platform {
	case "off":
		return "", false
	case "auto", "":
		return domain.DetectPlatform(runtime.GOOS)
	default:
		return domain.Platform(c.Page.Platform), true
	}
}
