// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd/predict3di)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pranavathiyani/predict3Di/codebook"
	"github.com/pranavathiyani/predict3Di/source"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g., PREDICT3DI_WORKERS or PREDICT3DI_FETCH_TIMEOUT.
const EnvPrefix = "PREDICT3DI"

// FetchConfig is settings for downloading structures
type FetchConfig struct {
	// how long to wait on a single mirror
	Timeout time.Duration `mapstructure:"timeout"`

	// URL templates tried in order, with %s for the PDB identifier
	Mirrors []string `mapstructure:"mirrors"`
}

// ServerConfig is settings for the HTTP API
type ServerConfig struct {
	// address to listen on
	Addr string `mapstructure:"addr"`

	// the largest structure file accepted, in bytes
	MaxUpload int64 `mapstructure:"max-upload"`
}

// Config is the root-level settings struct and is a mix of settings from a
// config file, the environment and the command line
type Config struct {
	// path to a codebook written by "predict3di train"; empty for the built
	// in codebook
	Codebook string `mapstructure:"codebook"`

	// number of chains (or files) encoded at once; 0 for GOMAXPROCS
	Workers int `mapstructure:"workers"`

	// log residues that fell back to the unknown symbol
	Verbose bool `mapstructure:"verbose"`

	Fetch  FetchConfig  `mapstructure:"fetch"`
	Server ServerConfig `mapstructure:"server"`
}

// New returns a Viper instance with every setting's default and environment
// variable overrides enabled.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("codebook", "")
	v.SetDefault("workers", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("fetch.timeout", source.DefaultTimeout)
	v.SetDefault("fetch.mirrors", source.DefaultMirrors)
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.max-upload", int64(64<<20))
}

// Load decodes the settings in v and checks them.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate returns an error for settings that can't be used.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative, got %s",
			c.Fetch.Timeout)
	}
	for _, m := range c.Fetch.Mirrors {
		if !strings.Contains(m, "%s") {
			return fmt.Errorf("fetch mirror '%s' has no %%s for the "+
				"identifier", m)
		}
	}
	if c.Server.MaxUpload <= 0 {
		return fmt.Errorf("server.max-upload must be positive, got %d",
			c.Server.MaxUpload)
	}
	return nil
}

// LoadCodebook opens the configured codebook, or returns the built in one
// if none is configured.
func (c Config) LoadCodebook() (*codebook.Codebook, error) {
	if len(c.Codebook) == 0 {
		return codebook.Default(), nil
	}
	f, err := os.Open(c.Codebook)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cb, err := codebook.Open(f)
	if err != nil {
		return nil, fmt.Errorf("codebook '%s': %w", c.Codebook, err)
	}
	return cb, nil
}

// Fetcher returns a structure downloader using the fetch settings.
func (c Config) Fetcher() *source.Fetcher {
	return &source.Fetcher{
		Mirrors: c.Fetch.Mirrors,
		Timeout: c.Fetch.Timeout,
	}
}
