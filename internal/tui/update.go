package tui

import (
	"context"
	"fmt"

	"motionline/internal/docs"
	"motionline/internal/keyframe"
	"motionline/internal/selection"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.helpView.Width = msg.Width
		m.helpView.Height = max(msg.Height-2, 3)
		if m.showHelp {
			m.helpView.SetContent(m.helpContent())
		}
		m.clampScroll()
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, waitForNotice(m.notices)

	case tea.KeyMsg:
		if m.showHelp {
			return m.updateHelp(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m appModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Cancel):
		m.showHelp = false
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m appModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	_, dragging := m.ed.Drag()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpView.SetContent(m.helpContent())
		m.helpView.GotoTop()

	case key.Matches(msg, m.keys.Left):
		m.frame--
		m.clampScroll()
	case key.Matches(msg, m.keys.Right):
		m.frame++
		m.clampScroll()
	case key.Matches(msg, m.keys.Up):
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursorRow < len(m.rows)-1 {
			m.cursorRow++
		}

	case key.Matches(msg, m.keys.Click):
		m.selectAt(selection.SelectLeft, false)
	case key.Matches(msg, m.keys.Toggle):
		m.selectAt(selection.SelectMultiple, false)
	case key.Matches(msg, m.keys.Row):
		m.selectAt(selection.SelectHorizontal, false)
	case key.Matches(msg, m.keys.Column):
		m.selectAt(selection.SelectVertical, false)
	case key.Matches(msg, m.keys.SelectRow):
		m.selectAt(selection.SelectAll, false)
	case key.Matches(msg, m.keys.SelectAll):
		m.selectAt(selection.SelectAll, true)
	case key.Matches(msg, m.keys.UnselectRow):
		m.selectAt(selection.SelectUnselectAll, false)
	case key.Matches(msg, m.keys.UnselectAll):
		m.selectAt(selection.SelectUnselectAll, true)

	case key.Matches(msg, m.keys.DragEarlier):
		m.preview(-1)
	case key.Matches(msg, m.keys.DragLater):
		m.preview(1)

	case key.Matches(msg, m.keys.Commit):
		if !dragging {
			return m, nil
		}
		delta, _ := m.ed.Drag()
		res, err := m.ed.CommitDrag(ctx)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
		if len(res.Skipped) > 0 {
			m.notice = fmt.Sprintf("%d selected keyframe(s) skipped", len(res.Skipped))
		}
		if delta != 0 {
			m.frame += delta
			m.clampScroll()
			m.persist()
		}

	case key.Matches(msg, m.keys.Cancel):
		if dragging {
			m.ed.CancelDrag()
			m.clampScroll()
		}
		m.notice = ""

	case key.Matches(msg, m.keys.Undo):
		if !m.ed.Undo(ctx) {
			m.notice = "nothing to undo"
			return m, nil
		}
		m.notice = ""
		m.persist()
	case key.Matches(msg, m.keys.Redo):
		if !m.ed.Redo(ctx) {
			m.notice = "nothing to redo"
			return m, nil
		}
		m.notice = ""
		m.persist()

	case key.Matches(msg, m.keys.Save):
		if m.persist() {
			m.notice = "saved"
		}
	}
	return m, nil
}

func (m *appModel) selectAt(st selection.SelectType, all bool) {
	if _, dragging := m.ed.Drag(); dragging {
		m.notice = "commit (enter) or cancel (esc) the move first"
		return
	}
	r, ok := m.currentRow()
	if !ok {
		return
	}
	target := selection.Target{TrackType: r.trackType, TrackNumber: r.trackNumber, Time: m.frame, AllTracks: all}
	if err := m.ed.Select(st, target); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.saved = false
}

func (m *appModel) preview(step int) {
	if keyframe.Count(m.ed.Timeline().SelectedProperties) == 0 {
		m.notice = "nothing selected"
		return
	}
	if _, dragging := m.ed.Drag(); !dragging {
		m.ed.BeginDrag()
	}
	if _, err := m.ed.PreviewDrag(step); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.clampScroll()
}

// persist writes the editor's timeline into the workspace. It reports success.
func (m *appModel) persist() bool {
	m.db.Timeline = m.ed.Timeline()
	if err := m.store.Save(m.db); err != nil {
		m.log.Error().Err(err).Msg("save failed")
		m.notice = "save failed: " + err.Error()
		m.saved = false
		return false
	}
	m.saved = true
	return true
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	if _, dragging := m.ed.Drag(); dragging {
		m.ed.CancelDrag()
	}
	if !m.saved {
		m.persist()
	}
	return m, tea.Quit
}

func (m appModel) helpContent() string {
	body, ok := docs.Get("tui")
	if !ok {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	out, err := docs.Render(body, max(m.width-2, 20))
	if err != nil {
		return body
	}
	return out
}
