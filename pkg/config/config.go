// Package config loads user settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/imagepuzzler/config.toml. Every key is
// optional; a missing file yields [Default]. Command-line flags override
// the file, which overrides built-in defaults.
//
//	[labels]
//	question_size = 64
//	answer_color = "#ffeb3b"
//	reveal_animation = "circle"
//
//	[preview]
//	width = 1280
//	height = 720
//	fps = 25
//	hold = "1.5s"
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//	ttl = "12h"
//
//	[server]
//	listen = "127.0.0.1:8710"
package config

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

const (
	appName  = "imagepuzzler"
	fileName = "config.toml"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full user configuration.
type Config struct {
	Labels  Labels  `toml:"labels"`
	Preview Preview `toml:"preview"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
}

// Labels are the defaults given to newly added images.
type Labels struct {
	QuestionSize    int     `toml:"question_size"`
	AnswerSize      int     `toml:"answer_size"`
	AnswerColor     string  `toml:"answer_color"`
	AnswerOutline   bool    `toml:"answer_outline"`
	AnswerX         float64 `toml:"answer_x"`
	AnswerY         float64 `toml:"answer_y"`
	RevealAnimation string  `toml:"reveal_animation"`
}

// Preview configures rendered frames and GIFs.
type Preview struct {
	Width  float64       `toml:"width"`
	Height float64       `toml:"height"`
	FPS    int           `toml:"fps"`
	Hold   time.Duration `toml:"hold"`
}

// Cache selects and configures the artifact cache.
type Cache struct {
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir   string `toml:"dir,omitempty"`
	Redis Redis  `toml:"redis"`
}

// Redis configures the redis cache backend.
type Redis struct {
	Addr     string        `toml:"addr"`
	Password string        `toml:"password,omitempty"`
	DB       int           `toml:"db"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// Server configures `imagepuzzler serve`.
type Server struct {
	Listen string `toml:"listen"`
}

// Default returns the built-in configuration.
func Default() Config {
	l := puzzle.DefaultLabel()
	return Config{
		Labels: Labels{
			QuestionSize:    l.QuestionSize,
			AnswerSize:      l.AnswerSize,
			AnswerColor:     l.AnswerColor,
			AnswerOutline:   l.AnswerOutline,
			AnswerX:         l.AnswerPosition.X,
			AnswerY:         l.AnswerPosition.Y,
			RevealAnimation: string(l.Variant),
		},
		Preview: Preview{Width: 960, Height: 600, FPS: 20, Hold: time.Second},
		Cache: Cache{
			Backend: BackendFile,
			Redis:   Redis{Addr: "localhost:6379", Prefix: appName + ":", TTL: 24 * time.Hour},
		},
		Server: Server{Listen: "127.0.0.1:8710"},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, fileName), nil
}

// Load reads path over [Default]. A missing file is not an error. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidInput,
			"unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks label defaults, preview sizes and the cache backend.
func (c Config) Validate() error {
	if err := c.Label().Validate(); err != nil {
		return err
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"preview size %vx%v must be positive", c.Preview.Width, c.Preview.Height)
	}
	if c.Preview.FPS <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "preview fps must be positive")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// Label converts the label defaults for [puzzle.Project.SetLabelDefaults].
func (c Config) Label() puzzle.Label {
	return puzzle.Label{
		QuestionSize:   c.Labels.QuestionSize,
		AnswerSize:     c.Labels.AnswerSize,
		AnswerColor:    c.Labels.AnswerColor,
		AnswerOutline:  c.Labels.AnswerOutline,
		AnswerPosition: geometry.Point{X: c.Labels.AnswerX, Y: c.Labels.AnswerY},
		Variant:        reveal.Variant(c.Labels.RevealAnimation),
	}
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores c at path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func Write(path string, c Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s already exists", path)
		}
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
