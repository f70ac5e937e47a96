// Package config loads the chat relay configuration once at process start.
//
// Values are layered: built-in defaults, then an optional TOML file, then the
// process environment (optionally seeded from a .env file). Command line flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/himi-ai-lab/chatrelay/pkg/anthropic"
)

const (
	DefaultHost    = "0.0.0.0"
	DefaultPort    = 10000
	DefaultEnvFile = ".env"
)

// Environment variables read by Load.
const (
	EnvAPIKey          = "ANTHROPIC_API_KEY"
	EnvBaseURL         = "ANTHROPIC_BASE_URL"
	EnvPort            = "PORT"
	EnvModel           = "CHATRELAY_MODEL"
	EnvMaxTokens       = "CHATRELAY_MAX_TOKENS"
	EnvUpstreamTimeout = "CHATRELAY_UPSTREAM_TIMEOUT"
	EnvDebug           = "CHATRELAY_DEBUG"
)

type Config struct {
	Server   Server   `toml:"server"`
	Upstream Upstream `toml:"upstream"`
	Debug    bool     `toml:"debug"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Upstream struct {
	BaseURL   string        `toml:"base_url"`
	APIKey    string        `toml:"api_key"`
	Model     string        `toml:"model"`
	MaxTokens int           `toml:"max_tokens"`
	Timeout   time.Duration `toml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Upstream: Upstream{
			BaseURL:   anthropic.DefaultBaseURL,
			Model:     anthropic.DefaultModel,
			MaxTokens: anthropic.DefaultMaxTokens,
			Timeout:   anthropic.DefaultTimeout,
		},
	}
}

// Options controls where Load looks for configuration.
type Options struct {
	// Path to a TOML config file. Empty skips the file layer.
	Path string

	// EnvFile is loaded into the environment without overriding variables
	// that are already set. A missing file is not an error.
	EnvFile string
}

// Load builds the configuration from defaults, file, and environment.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		md, err := toml.DecodeFile(opts.Path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("could not decode config file %s: %w", opts.Path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("unknown keys in config file %s: %s", opts.Path, strings.Join(keys, ", "))
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load env file %s: %w", opts.EnvFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvAPIKey); ok {
		c.Upstream.APIKey = v
	}
	if v, ok := lookup(EnvBaseURL); ok {
		c.Upstream.BaseURL = v
	}
	if v, ok := lookup(EnvModel); ok {
		c.Upstream.Model = v
	}
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvMaxTokens); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxTokens, v, err)
		}
		c.Upstream.MaxTokens = n
	}
	if v, ok := lookup(EnvUpstreamTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvUpstreamTimeout, v, err)
		}
		c.Upstream.Timeout = d
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		c.Debug = b
	}
	return nil
}

// Validate reports the first setting that cannot work. A missing API key is
// allowed; it surfaces as an authentication error on the first chat request.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if c.Upstream.Model == "" {
		return errors.New("upstream model must not be empty")
	}
	if c.Upstream.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be positive, got %d", c.Upstream.MaxTokens)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.Upstream.Timeout)
	}
	return nil
}

// ListenAddr is the host:port the server binds.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// HasAPIKey reports whether an upstream credential is configured.
func (c Config) HasAPIKey() bool {
	return c.Upstream.APIKey != ""
}

// lookup treats empty variables as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
