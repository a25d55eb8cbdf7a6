package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorChromeFg   lipgloss.TerminalColor = ac("240", "245")
	colorKey        lipgloss.TerminalColor = ac("235", "252")
	colorSelectedFg lipgloss.TerminalColor = ac("27", "75") // blue
	colorGhostFg    lipgloss.TerminalColor = ac("130", "214")
	colorCursorBg   lipgloss.TerminalColor = ac("#e9e9e9", "#3a3a3a")
	colorRowBg      lipgloss.TerminalColor = ac("255", "235")
	colorNoticeFg   lipgloss.TerminalColor = ac("160", "203") // red
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
)

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style    { return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted)) }
func styleChrome() lipgloss.Style   { return lipgloss.NewStyle().Foreground(colorChromeFg) }
func styleKey() lipgloss.Style      { return lipgloss.NewStyle().Foreground(colorKey) }
func styleSelected() lipgloss.Style { return lipgloss.NewStyle().Foreground(colorSelectedFg).Bold(true) }
func styleGhost() lipgloss.Style    { return lipgloss.NewStyle().Foreground(colorGhostFg) }
func styleNotice() lipgloss.Style   { return lipgloss.NewStyle().Foreground(colorNoticeFg) }
func styleCursor() lipgloss.Style   { return lipgloss.NewStyle().Background(colorCursorBg).Bold(true) }
func styleRowActive() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorRowBg)
}
func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
// Only NO_COLOR is honored; CLICOLOR is left to non-interactive output.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Detection can under-report; trust TERM/COLORTERM when they claim more.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}
