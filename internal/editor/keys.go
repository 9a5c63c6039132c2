package editor

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

func keyString(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	if arrow := arrowName(ev.Key()); arrow != "" {
		prefix := ""
		if mods&tcell.ModMeta != 0 {
			prefix += "cmd+"
		}
		if mods&tcell.ModCtrl != 0 {
			prefix += "ctrl+"
		}
		if mods&tcell.ModAlt != 0 {
			prefix += "alt+"
		}
		if mods&tcell.ModShift != 0 {
			prefix += "shift+"
		}
		return prefix + arrow
	}
	if mods&tcell.ModCtrl != 0 {
		switch ev.Key() {
		case tcell.KeyHome:
			return "ctrl+home"
		case tcell.KeyEnd:
			return "ctrl+end"
		}
	}
	if mods&tcell.ModMeta != 0 {
		if ev.Key() == tcell.KeyRune {
			r := ev.Rune()
			if mods&tcell.ModShift != 0 {
				return "cmd+shift+" + strings.ToLower(string(r))
			}
			return "cmd+" + strings.ToLower(string(r))
		}
		switch ev.Key() {
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			return "cmd+backspace"
		case tcell.KeyEnter:
			return "cmd+enter"
		case tcell.KeyHome:
			return "cmd+home"
		case tcell.KeyEnd:
			return "cmd+end"
		}
	}
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	// KeyTab, KeyEnter and KeyBackspace share codes with ctrl+i, ctrl+m
	// and ctrl+h.
	switch ev.Key() {
	case tcell.KeyTab:
		if mods&tcell.ModShift != 0 {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	}
	if name := ctrlKeyName(ev.Key()); name != "" {
		return name
	}
	switch ev.Key() {
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyDelete:
		return "del"
	case tcell.KeyEscape:
		return "esc"
	}
	return ""
}

func arrowName(k tcell.Key) string {
	switch k {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	}
	return ""
}

func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	return ""
}
