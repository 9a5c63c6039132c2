package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Keymap struct {
	Normal map[string]string `toml:"normal"`
	Edit   map[string]string `toml:"edit"`
}

type EditorOptions struct {
	// Delimiter is a single character, "tab" or empty for detection.
	Delimiter       string `toml:"delimiter"`
	Quote           string `toml:"quote"`
	ReparseDelayMS  int    `toml:"reparse-delay-ms"`
	ResetThreshold  int    `toml:"reset-threshold"`
	ColumnWidth     int    `toml:"column-width"`
	MaxColumnWidth  int    `toml:"max-column-width"`
	SystemClipboard bool   `toml:"system-clipboard"`
}

// ReparseDelay is ReparseDelayMS as a duration.
func (o EditorOptions) ReparseDelay() time.Duration {
	return time.Duration(o.ReparseDelayMS) * time.Millisecond
}

// DelimiterByte decodes Delimiter. ok is false when it is unset or invalid.
func (o EditorOptions) DelimiterByte() (byte, bool) {
	return charOption(o.Delimiter)
}

func (o EditorOptions) QuoteByte() byte {
	if q, ok := charOption(o.Quote); ok {
		return q
	}
	return '"'
}

func charOption(s string) (byte, bool) {
	switch s {
	case "tab", `\t`, "\t":
		return '\t', true
	case "":
		return 0, false
	}
	if len(s) != 1 || s[0] == '\n' || s[0] == '\r' {
		return 0, false
	}
	return s[0], true
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	HeaderForeground     string `toml:"header-foreground"`
	HeaderBackground     string `toml:"header-background"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	CursorForeground     string `toml:"cursor-foreground"`
	CursorBackground     string `toml:"cursor-background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	EditingForeground    string `toml:"editing-foreground"`
	EditingBackground    string `toml:"editing-background"`
	GridLineForeground   string `toml:"grid-line-foreground"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			Quote:           `"`,
			ReparseDelayMS:  1000,
			ResetThreshold:  10000,
			ColumnWidth:     12,
			MaxColumnWidth:  40,
			SystemClipboard: true,
		},
		Theme: Theme{
			Theme:                "",
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			HeaderForeground:     "#E6B450",
			HeaderBackground:     "#0F1419",
			SelectionForeground:  "#B3B1AD",
			SelectionBackground:  "#27425A",
			CursorForeground:     "#0A0E14",
			CursorBackground:     "#E6B450",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			EditingForeground:    "#000000",
			EditingBackground:    "#FFD700",
			GridLineForeground:   "#3E4B59",
		},
		Keymap: Keymap{
			Normal: map[string]string{
				"h":              "move_left",
				"j":              "move_down",
				"k":              "move_up",
				"l":              "move_right",
				"left":           "move_left",
				"down":           "move_down",
				"up":             "move_up",
				"right":          "move_right",
				"tab":            "move_right",
				"shift+tab":      "move_left",
				"shift+left":     "extend_left",
				"shift+right":    "extend_right",
				"shift+up":       "extend_up",
				"shift+down":     "extend_down",
				"home":           "row_start",
				"end":            "row_end",
				"ctrl+home":      "grid_start",
				"ctrl+end":       "grid_end",
				"pgup":           "page_up",
				"pgdn":           "page_down",
				"enter":          "edit_cell",
				"i":              "edit_cell",
				"=":              "edit_header",
				"esc":            "collapse_selection",
				"ctrl+q":         "quit",
				"ctrl+c":         "copy",
				"ctrl+x":         "cut",
				"ctrl+v":         "paste",
				"y":              "copy",
				"d":              "cut",
				"p":              "paste",
				"del":            "clear-cells",
				"backspace":      "clear-cells",
				"u":              "undo",
				"U":              "redo",
				"ctrl+z":         "undo",
				"ctrl+y":         "redo",
				"ctrl+r":         "redo",
				"ctrl+s":         "save",
				"ctrl+e":         "export-xlsx",
				"R":              "reload",
				"o":              "insert-row-below",
				"O":              "insert-row-above",
				"a":              "insert-column-right",
				"A":              "insert-column-left",
				"D":              "remove-row",
				"X":              "remove-column",
				"alt+up":         "move-row-up",
				"alt+down":       "move-row-down",
				"alt+left":       "move-column-left",
				"alt+right":      "move-column-right",
				"alt+shift+up":   "clear-rows",
				"alt+shift+left": "clear-columns",
				"cmd+z":          "undo",
				"cmd+shift+z":    "redo",
				"cmd+c":          "copy",
				"cmd+x":          "cut",
				"cmd+v":          "paste",
				"cmd+s":          "save",
			},
			Edit: map[string]string{
				"enter":     "commit_edit",
				"tab":       "commit_edit_right",
				"esc":       "cancel_edit",
				"left":      "cursor_left",
				"right":     "cursor_right",
				"home":      "cursor_start",
				"end":       "cursor_end",
				"backspace": "delete_back",
				"del":       "delete_forward",
				"ctrl+u":    "delete_to_start",
				"ctrl+v":    "paste",
				"cmd+v":     "paste",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	meta, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, err
	}

	if userCfg.Editor.Delimiter != "" {
		cfg.Editor.Delimiter = userCfg.Editor.Delimiter
	}
	if userCfg.Editor.Quote != "" {
		cfg.Editor.Quote = userCfg.Editor.Quote
	}
	if userCfg.Editor.ReparseDelayMS > 0 {
		cfg.Editor.ReparseDelayMS = userCfg.Editor.ReparseDelayMS
	}
	if userCfg.Editor.ResetThreshold > 0 {
		cfg.Editor.ResetThreshold = userCfg.Editor.ResetThreshold
	}
	if userCfg.Editor.ColumnWidth > 0 {
		cfg.Editor.ColumnWidth = userCfg.Editor.ColumnWidth
	}
	if userCfg.Editor.MaxColumnWidth > 0 {
		cfg.Editor.MaxColumnWidth = userCfg.Editor.MaxColumnWidth
	}
	if meta.IsDefined("editor", "system-clipboard") {
		cfg.Editor.SystemClipboard = userCfg.Editor.SystemClipboard
	}
	if cfg.Editor.MaxColumnWidth < cfg.Editor.ColumnWidth {
		cfg.Editor.MaxColumnWidth = cfg.Editor.ColumnWidth
	}

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	for k, v := range userCfg.Keymap.Normal {
		cfg.Keymap.Normal[k] = v
	}
	for k, v := range userCfg.Keymap.Edit {
		cfg.Keymap.Edit[k] = v
	}

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	set(&dst.HeaderForeground, src.HeaderForeground)
	set(&dst.HeaderBackground, src.HeaderBackground)
	set(&dst.SelectionForeground, src.SelectionForeground)
	set(&dst.SelectionBackground, src.SelectionBackground)
	set(&dst.CursorForeground, src.CursorForeground)
	set(&dst.CursorBackground, src.CursorBackground)
	set(&dst.StatuslineForeground, src.StatuslineForeground)
	set(&dst.StatuslineBackground, src.StatuslineBackground)
	set(&dst.EditingForeground, src.EditingForeground)
	set(&dst.EditingBackground, src.EditingBackground)
	set(&dst.GridLineForeground, src.GridLineForeground)
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("TABEDIT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "tabedit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabedit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
