// Package config loads the driver configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/pkg/geom"
)

type Config struct {
	// Catalog is the asset catalog with vehicles and characters.
	Catalog string `yaml:"catalog"`
	// Track is the collision mesh every run drives on.
	Track        string    `yaml:"track"`
	Spawn        Spawn     `yaml:"spawn"`
	Runs         []Run     `yaml:"runs"`
	Workers      int       `yaml:"workers"`
	LogLevel     string    `yaml:"log_level"`
	Telemetry    Telemetry `yaml:"telemetry"`
	StopOnDesync bool      `yaml:"stop_on_desync"`
}

// Spawn takes its angles in degrees. Without angles the vehicle faces -Z.
type Spawn struct {
	Pos    [3]float32  `yaml:"pos"`
	Angles *[3]float32 `yaml:"angles,omitempty"`
}

type Run struct {
	Name string `yaml:"name"`
	// Ghost is the input file. Reference is an optional recorded trajectory.
	Ghost     string `yaml:"ghost"`
	Reference string `yaml:"reference,omitempty"`
	Vehicle   string `yaml:"vehicle"`
	Character string `yaml:"character"`
}

type Telemetry struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// Every publishes one frame out of Every.
	Every uint32 `yaml:"every"`
}

func Defaults() Config {
	return Config{
		Workers:      runtime.NumCPU(),
		LogLevel:     "info",
		StopOnDesync: true,
		Telemetry: Telemetry{
			Addr:  "127.0.0.1:8090",
			Every: 1,
		},
	}
}

// Load decodes YAML over the defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.fill()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile loads path and resolves relative file names against its
// directory.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.resolve(filepath.Dir(path))
	return c, nil
}

func (c *Config) fill() {
	for i := range c.Runs {
		r := &c.Runs[i]
		if r.Name == "" && r.Ghost != "" {
			r.Name = strings.TrimSuffix(filepath.Base(r.Ghost), filepath.Ext(r.Ghost))
		}
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Telemetry.Every == 0 {
		c.Telemetry.Every = 1
	}
}

func (c *Config) resolve(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Catalog = join(c.Catalog)
	c.Track = join(c.Track)
	for i := range c.Runs {
		c.Runs[i].Ghost = join(c.Runs[i].Ghost)
		c.Runs[i].Reference = join(c.Runs[i].Reference)
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Catalog == "":
		return fmt.Errorf("%w: catalog is required", ErrInvalidConfig)
	case c.Track == "":
		return fmt.Errorf("%w: track is required", ErrInvalidConfig)
	case len(c.Runs) == 0:
		return fmt.Errorf("%w: at least one run is required", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.Telemetry.Enabled && c.Telemetry.Addr == "":
		return fmt.Errorf("%w: telemetry addr is required", ErrInvalidConfig)
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}

	seen := make(map[string]struct{}, len(c.Runs))
	for i, r := range c.Runs {
		switch {
		case r.Ghost == "":
			return fmt.Errorf("%w: run %d: ghost is required", ErrInvalidConfig, i)
		case r.Vehicle == "", r.Character == "":
			return fmt.Errorf("%w: run %q: vehicle and character are required", ErrInvalidConfig, r.Name)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("%w: duplicate run name %q", ErrInvalidConfig, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// Level is the parsed log level. Validate guarantees it is known.
func (c *Config) Level() log.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// Player converts the spawn into simulation terms.
func (s Spawn) Player() player.Spawn {
	spawn := player.DefaultSpawn(geom.NewVec3(s.Pos[0], s.Pos[1], s.Pos[2]))
	if s.Angles != nil {
		a := *s.Angles
		spawn.Rot = geom.QuatFromAngles(geom.NewVec3(a[0], a[1], a[2]).ToRadians())
	}
	return spawn
}
