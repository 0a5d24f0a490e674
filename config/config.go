// Package config contains configuration structs.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/gofu/webnav/highlight"
	"github.com/gofu/webnav/history"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Server configuration, for running the HTTP server hosting the application.
type Server struct {
	// Addr is the HTTP address to listen on.
	Addr string `toml:"addr" env:"WEBNAV_ADDR"`
	// BaseURL is the path the application is served under.
	BaseURL string `toml:"base_url" env:"BASE_URL"`
	// Database is the SQLite database path. Empty keeps data in memory.
	Database string `toml:"database" env:"WEBNAV_DATABASE"`
	// MaxUpload is the upload size limit, in bytes.
	MaxUpload int64 `toml:"max_upload" env:"WEBNAV_MAX_UPLOAD"`
	// SessionTTL is how long idle navigation sessions are kept.
	SessionTTL time.Duration `toml:"session_ttl" env:"WEBNAV_SESSION_TTL"`
	// Style is the chroma style of highlighted data.
	Style string `toml:"style" env:"WEBNAV_STYLE"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Server {
	return Server{
		Addr:       "127.0.0.1:7656",
		BaseURL:    "/",
		MaxUpload:  10 << 20,
		SessionTTL: 30 * time.Minute,
		Style:      highlight.DefaultStyle,
	}
}

// Load returns Default overridden by the TOML file, if not empty, and then
// by environment variables.
func Load(file string) (Server, error) {
	conf := Default()
	if len(file) != 0 {
		md, err := toml.DecodeFile(file, &conf)
		if err != nil {
			return conf, fmt.Errorf("decode %s: %w", file, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return conf, fmt.Errorf("decode %s: unknown keys %s", file, strings.Join(keys, ", "))
		}
	}
	if err := ParseEnv(&conf); err != nil {
		return conf, err
	}
	return conf, nil
}

// ParseEnv loads configuration from environment variables. Unset variables
// leave target unchanged.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks conf, and returns it with BaseURL normalized.
func (c Server) Validate() (Server, error) {
	var errs []error
	if len(strings.TrimSpace(c.Addr)) == 0 {
		errs = append(errs, fmt.Errorf("%w: addr is required", ErrInvalid))
	}
	base, err := history.NormalizeBase(c.BaseURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: base_url: %w", ErrInvalid, err))
	}
	c.BaseURL = base
	if c.MaxUpload <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_upload must be positive, got %d", ErrInvalid, c.MaxUpload))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: session_ttl must be positive, got %s", ErrInvalid, c.SessionTTL))
	}
	if !highlight.KnownStyle(c.Style) {
		errs = append(errs, fmt.Errorf("%w: unknown style %q", ErrInvalid, c.Style))
	}
	return c, errors.Join(errs...)
}
