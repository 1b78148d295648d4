// Package config holds CLI configuration for the catalog server,
// registered onto a pflag.FlagSet the way MacroPower-x's profile and
// magicschema packages register their own Config onto a cobra command.
package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds the CLI flag names, letting callers rename flags while
// keeping NewConfig's defaults.
type Flags struct {
	Bind              string
	Port              string
	DatabaseURL       string
	MaxHierarchyDepth string
	MaxPathDepth      string
	MaxNameLength     string
	Timezone          string
}

// NewConfig creates a new Config embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds the server's runtime configuration (spec.md §6
// "Configuration"). A zero-value Config is unusable; build one with
// NewConfig and register flags with RegisterFlags before parsing.
type Config struct {
	Flags Flags

	Bind              string
	Port              string
	DatabaseURL       string
	MaxHierarchyDepth int
	MaxPathDepth      int
	MaxNameLength     int
	Timezone          string
}

// NewConfig creates a Config with default flag names and spec.md §6's
// default values.
func NewConfig() *Config {
	f := Flags{
		Bind:              "bind",
		Port:              "port",
		DatabaseURL:       "database-url",
		MaxHierarchyDepth: "max-hierarchy-depth",
		MaxPathDepth:      "max-path-depth",
		MaxNameLength:     "max-name-length",
		Timezone:          "tz",
	}
	return f.NewConfig()
}

// RegisterFlags adds the server's flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Bind, c.Flags.Bind, "0.0.0.0", "address to bind the HTTP server to")
	flags.StringVar(&c.Port, c.Flags.Port, "8080", "port to listen on")
	flags.StringVar(&c.DatabaseURL, c.Flags.DatabaseURL, "", "Postgres connection string (lib/pq DSN or URL)")
	flags.IntVar(&c.MaxHierarchyDepth, c.Flags.MaxHierarchyDepth, 100, "maximum group hierarchy depth")
	flags.IntVar(&c.MaxPathDepth, c.Flags.MaxPathDepth, 20, "maximum group path segment count")
	flags.IntVar(&c.MaxNameLength, c.Flags.MaxNameLength, 255, "maximum group name length")
	flags.StringVar(&c.Timezone, c.Flags.Timezone, "", "IANA timezone for the human-time parser (default: system local)")
}

// Location resolves Timezone to a *time.Location, falling back to
// time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Addr returns the host:port pair net/http.Server listens on.
func (c *Config) Addr() string {
	return c.Bind + ":" + c.Port
}
