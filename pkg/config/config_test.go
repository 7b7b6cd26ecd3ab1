package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Label() != puzzle.DefaultLabel() {
		t.Errorf("Label() = %+v, want the editor defaults", cfg.Label())
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[labels]
question_size = 48
reveal_animation = "circle"

[preview]
width = 1280
hold = "1.5s"

[cache]
backend = "redis"

[cache.redis]
addr = "cache:6379"
ttl = "12h"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Labels.QuestionSize != 48 || cfg.Label().Variant != reveal.Circle {
		t.Errorf("labels = %+v", cfg.Labels)
	}
	if cfg.Labels.AnswerSize != puzzle.DefaultAnswerSize {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Preview.Width != 1280 || cfg.Preview.Height != 600 || cfg.Preview.Hold != 1500*time.Millisecond {
		t.Errorf("preview = %+v", cfg.Preview)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "cache:6379" || cfg.Cache.Redis.TTL != 12*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[labels]\nquestion_sise = 3\n", "question_sise"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "memcached"},
		{"bad variant", "[labels]\nreveal_animation = \"spin\"\n", "spin"},
		{"bad color", "[labels]\nanswer_color = \"red\"\n", "red"},
		{"syntax", "[labels\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "imagepuzzler", "config.toml"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}

func TestWriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Server.Listen = ":9000"
	if err := Write(path, cfg, false); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("reloaded %+v, want %+v", got, cfg)
	}
	if err := Write(path, cfg, false); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second write without overwrite: err = %v", err)
	}
	if err := Write(path, cfg, true); err != nil {
		t.Errorf("overwrite: %v", err)
	}
}
