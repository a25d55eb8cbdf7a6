package tui

import (
	"fmt"
	"strconv"
	"strings"

	"motionline/internal/keyframe"
	"motionline/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	if m.showHelp {
		return m.helpView.View() + "\n" + styleMuted().Render("esc/? close help")
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")
	b.WriteString(m.rulerLine())
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(styleMuted().Render("no resident layer; run `motionline import <file>`"))
		b.WriteString("\n")
	}

	first, last := m.visibleRows()
	for i := first; i < last; i++ {
		b.WriteString(m.rowLine(i))
		b.WriteString("\n")
	}

	b.WriteString(styleMuted().Render(strings.Repeat(glyphHRule(), max(m.width, 10))))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// visibleRows keeps the cursor row on screen below the header and above the footer.
func (m appModel) visibleRows() (int, int) {
	avail := m.height - 6
	if avail < 1 {
		avail = 1
	}
	first := 0
	if m.cursorRow >= avail {
		first = m.cursorRow - avail + 1
	}
	last := min(first+avail, len(m.rows))
	return first, last
}

func (m appModel) headerLine() string {
	title := "motionline"
	if m.db.HasAnimation() {
		title = fmt.Sprintf("motionline  %s / %s", m.db.Animation.ID, m.db.ActiveLayerID)
	}
	parts := []string{styleTitle().Render(title), styleChrome().Render("frame " + strconv.Itoa(m.frame))}
	if n := keyframe.Count(m.ed.Timeline().SelectedProperties); n > 0 {
		parts = append(parts, styleSelected().Render(fmt.Sprintf("%d selected", n)))
	}
	if delta, dragging := m.ed.Drag(); dragging {
		parts = append(parts, styleGhost().Render(fmt.Sprintf("move %s %+d", glyphArrow(), delta)))
	}
	if !m.saved {
		parts = append(parts, styleMuted().Render("(unsaved)"))
	}
	return truncate(strings.Join(parts, "  "), m.width)
}

func (m appModel) rulerLine() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth+1))
	vis := m.visibleFrames()
	for f := m.offset; f < m.offset+vis; {
		if f%10 == 0 {
			label := strconv.Itoa(f)
			b.WriteString(padRight(label, m.frameWidth*((len(label)+m.frameWidth-1)/m.frameWidth)))
			f += (len(label) + m.frameWidth - 1) / m.frameWidth
			continue
		}
		b.WriteString(strings.Repeat(" ", m.frameWidth))
		f++
	}
	return styleChrome().Render(truncate(b.String(), m.width))
}

func (m appModel) rowLine(i int) string {
	r := m.rows[i]
	label := strings.Repeat("  ", r.depth) + r.label
	if r.trackType == model.TrackTypeBone {
		label = strings.Repeat("  ", r.depth-1) + glyphTwistyExpanded() + " " + r.label
	}
	label = padRight(truncate(label, labelWidth), labelWidth)
	if i == m.cursorRow {
		label = styleRowActive().Render(label)
	} else if r.trackType != model.TrackTypeProperty {
		label = styleChrome().Render(label)
	}

	tr, _ := m.track(r)
	tl := m.ed.Timeline()
	ghosts := map[int]bool{}
	for _, t := range m.ed.GhostTimes(r.trackType, r.trackNumber) {
		ghosts[t] = true
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" ")
	vis := m.visibleFrames()
	for f := m.offset; f < m.offset+vis; f++ {
		cell := m.cell(tr, tl, r, f, ghosts[f])
		if i == m.cursorRow && f == m.frame {
			cell = styleCursor().Render(xansi.Strip(cell))
		}
		b.WriteString(cell)
	}
	return truncate(b.String(), m.width)
}

func (m appModel) cell(tr model.Track, tl model.Timeline, r row, f int, ghost bool) string {
	pad := strings.Repeat(" ", m.frameWidth-1)
	switch {
	case ghost:
		return styleGhost().Render(glyphGhost()) + pad
	case keyframe.Contains(tl.SelectionOf(r.trackType), r.trackNumber, f) && keyframe.IsLive(tr.Keyframes, f):
		return styleSelected().Render(glyphSelected()) + pad
	case keyframe.IsLive(tr.Keyframes, f):
		return styleKey().Render(glyphKey()) + pad
	default:
		return styleMuted().Render(glyphEmpty()) + pad
	}
}

func (m appModel) statusLine() string {
	if m.notice != "" {
		return truncate(styleNotice().Render(m.notice), m.width)
	}
	r, ok := m.currentRow()
	if !ok {
		return ""
	}
	tr, _ := m.track(r)
	return truncate(styleMuted().Render(fmt.Sprintf("%s %s  keys %d", r.trackType, tr.Identifier.TrackID, len(keyframe.LiveTimes(tr.Keyframes)))), m.width)
}

func truncate(s string, w int) string {
	if w <= 0 || xansi.StringWidth(s) <= w {
		return s
	}
	return xansi.Truncate(s, w, "…")
}

func padRight(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
