package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("missing file = %+v, want defaults", *cfg)
	}
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		want    func(*Config) bool
		wantErr string
	}{
		{
			name: "full file",
			toml: `
[store]
backend = "sqlite"
path = "/tmp/tasks.db"

[display]
color = "never"
sort = "time"
text_width = 50
`,
			want: func(c *Config) bool {
				return c.Store.Backend == BackendSQLite && c.Store.Path == "/tmp/tasks.db" &&
					c.Display.Color == ColorNever && c.Display.Sort == SortTime && c.Display.TextWidth == 50
			},
		},
		{
			name: "partial file keeps defaults",
			toml: "[display]\nsort = \"created\"\n",
			want: func(c *Config) bool {
				return c.Store.Backend == BackendFile && c.Display.Color == ColorAuto &&
					c.Display.Sort == SortCreated && c.Display.TextWidth == DefaultTextWidth
			},
		},
		{name: "bad backend", toml: "[store]\nbackend = \"redis\"\n", wantErr: "store.backend"},
		{name: "bad color", toml: "[display]\ncolor = \"sometimes\"\n", wantErr: "display.color"},
		{name: "bad sort", toml: "[display]\nsort = \"alpha\"\n", wantErr: "display.sort"},
		{name: "narrow text", toml: "[display]\ntext_width = 3\n", wantErr: "text_width"},
		{name: "malformed", toml: "[display\n", wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(writeConfig(t, tt.toml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadFrom() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFrom failed: %v", err)
			}
			if !tt.want(cfg) {
				t.Errorf("unexpected config %+v", *cfg)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "[display]\ncolor = \"always\"\n")
	t.Setenv(EnvPath, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Display.Color != ColorAlways {
		t.Errorf("color = %q, want always", cfg.Display.Color)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if want := filepath.Join(home, ".config", "tsk", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestForceColor(t *testing.T) {
	tests := []struct {
		mode string
		want *bool
	}{
		{ColorAuto, nil},
		{ColorAlways, boolPtr(true)},
		{ColorNever, boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := Default()
			cfg.Display.Color = tt.mode
			got := cfg.ForceColor()
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("ForceColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Display.TextWidth = 60

	if err := cfg.Write(path, false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := cfg.Write(path, false); err == nil {
		t.Error("expected error writing over existing config")
	}
	if err := cfg.Write(path, true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip = %+v, want %+v", *loaded, *cfg)
	}
}

func boolPtr(b bool) *bool { return &b }
