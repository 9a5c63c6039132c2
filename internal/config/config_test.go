package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("TABEDIT_CONFIG_HOME", "/tmp/tabedit-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/tabedit-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/tabedit-config")
	}

	t.Setenv("TABEDIT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/tabedit" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/tabedit")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("TABEDIT_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.ReparseDelay() != time.Second {
		t.Fatalf("ReparseDelay = %v, want 1s", cfg.Editor.ReparseDelay())
	}
	if cfg.Editor.ResetThreshold != 10000 {
		t.Fatalf("ResetThreshold = %d, want 10000", cfg.Editor.ResetThreshold)
	}
	if !cfg.Editor.SystemClipboard {
		t.Fatalf("SystemClipboard disabled by default")
	}
	if _, ok := cfg.Editor.DelimiterByte(); ok {
		t.Fatalf("default delimiter should be detected")
	}
	if cfg.Editor.QuoteByte() != '"' {
		t.Fatalf("QuoteByte = %q, want '\"'", cfg.Editor.QuoteByte())
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TABEDIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
header-foreground = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
delimiter = "tab"
reparse-delay-ms = 250
column-width = 20
max-column-width = 10
system-clipboard = false

[theme]
theme = "test"
header-foreground = "#123456"

[keymap.normal]
x = "quit"

[keymap.edit]
"ctrl+c" = "cancel_edit"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if d, ok := cfg.Editor.DelimiterByte(); !ok || d != '\t' {
		t.Fatalf("Delimiter = %q %v, want tab", d, ok)
	}
	if cfg.Editor.ReparseDelay() != 250*time.Millisecond {
		t.Fatalf("ReparseDelay = %v, want 250ms", cfg.Editor.ReparseDelay())
	}
	if cfg.Editor.MaxColumnWidth != 20 {
		t.Fatalf("MaxColumnWidth = %d, want 20", cfg.Editor.MaxColumnWidth)
	}
	if cfg.Editor.SystemClipboard {
		t.Fatalf("SystemClipboard = true, want false")
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.Background != "#222222" {
		t.Fatalf("Background = %q, want %q", cfg.Theme.Background, "#222222")
	}
	if cfg.Theme.HeaderForeground != "#123456" {
		t.Fatalf("HeaderForeground = %q, want %q", cfg.Theme.HeaderForeground, "#123456")
	}
	if cfg.Keymap.Normal["x"] != "quit" {
		t.Fatalf("keymap x = %q, want %q", cfg.Keymap.Normal["x"], "quit")
	}
	if cfg.Keymap.Normal["h"] != "move_left" {
		t.Fatalf("keymap h = %q, want %q", cfg.Keymap.Normal["h"], "move_left")
	}
	if cfg.Keymap.Edit["ctrl+c"] != "cancel_edit" {
		t.Fatalf("edit keymap ctrl+c = %q, want cancel_edit", cfg.Keymap.Edit["ctrl+c"])
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TABEDIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}

func TestCharOption(t *testing.T) {
	cases := map[string]struct {
		b  byte
		ok bool
	}{
		"":    {0, false},
		";":   {';', true},
		"tab": {'\t', true},
		`\t`:  {'\t', true},
		"ab":  {0, false},
		"\n":  {0, false},
	}
	for in, want := range cases {
		b, ok := charOption(in)
		if b != want.b || ok != want.ok {
			t.Fatalf("charOption(%q) = %q %v, want %q %v", in, b, ok, want.b, want.ok)
		}
	}
}
