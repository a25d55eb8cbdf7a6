package tui

import (
	"strings"
	"sync"
)

// Terminal apps can't change the user's font, so the grid can fall back to ASCII
// glyphs on terminals/fonts that don't render the Unicode set cleanly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference takes MOTIONLINE_TUI_GLYPHS / tui.glyphs. Unknown values are ignored.
func applyGlyphPreference(v string) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphsName(gs glyphSet) string {
	switch gs {
	case glyphSetASCII:
		return "ASCII"
	default:
		return "Unicode"
	}
}

func glyphKey() string {
	if glyphs() == glyphSetASCII {
		return "o"
	}
	return "◆"
}

func glyphSelected() string {
	if glyphs() == glyphSetASCII {
		return "#"
	}
	return "◈"
}

// glyphGhost marks where a selected keyframe lands while a move is pending.
func glyphGhost() string {
	if glyphs() == glyphSetASCII {
		return "+"
	}
	return "◇"
}

func glyphEmpty() string {
	if glyphs() == glyphSetASCII {
		return "."
	}
	return "·"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
