package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"motionline/internal/animation"
	"motionline/internal/keyframe"
	"motionline/internal/model"
	"motionline/internal/remote"
	"motionline/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls []remote.Payload
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, p remote.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	return f.err
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(appModel)
	}
	return m
}

func walkDB(t *testing.T) (*store.DB, store.Store) {
	t.Helper()
	v := json.RawMessage(`[0,0,0]`)
	a := animation.Animation{
		ID:  "walk",
		FPS: 24,
		Layers: []animation.Layer{{
			ID: "base",
			Bones: []animation.Bone{
				{ID: "hips", Properties: []animation.Property{
					{Kind: model.PropertyPosition, Keyframes: []animation.Key{{Time: 0, Value: v}, {Time: 12, Value: v}}},
					{Kind: model.PropertyRotation, Keyframes: []animation.Key{{Time: 6, Value: v}}},
				}},
				{ID: "spine", Properties: []animation.Property{
					{Kind: model.PropertyPosition, Keyframes: []animation.Key{{Time: 0, Value: v}}},
				}},
			},
		}},
	}
	tl, err := animation.BuildTimeline(a, "base")
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}
	s := store.Store{Dir: t.TempDir()}
	db := &store.DB{Version: 1, Animation: &a, ActiveLayerID: "base", Timeline: tl}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}
	return db, s
}

func liveTimes(m appModel, trackID string) []int {
	props := m.ed.Timeline().Properties
	i, ok := keyframe.FindTrackByID(props, trackID)
	if !ok {
		return nil
	}
	return keyframe.LiveTimes(props[i].Keyframes)
}

func TestRows_LayerBonesProperties(t *testing.T) {
	db, s := walkDB(t)
	m := newAppModel(Options{Store: s, DB: db})

	var got []string
	for _, r := range m.rows {
		got = append(got, string(r.trackType)+":"+r.label)
	}
	want := []string{"layer:base", "bone:hips", "property:position", "property:rotation", "bone:spine", "property:position"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rows: got %v want %v", got, want)
	}
}

func TestDragPreviewCommitUndo(t *testing.T) {
	db, s := walkDB(t)
	pub := &fakePublisher{}
	m := newAppModel(Options{Store: s, DB: db, Publisher: pub, Debounce: time.Hour})

	// Select the hips.position row, then preview +3.
	m = press(t, m, "j", "j", "r", ">", ">", ">")
	if delta, dragging := m.ed.Drag(); !dragging || delta != 3 {
		t.Fatalf("expected pending drag +3, got %d dragging=%v", delta, dragging)
	}
	if got := liveTimes(m, "hips.position"); len(got) != 2 || got[0] != 0 || got[1] != 12 {
		t.Fatalf("preview must not touch tracks, got %v", got)
	}
	if ghosts := m.ed.GhostTimes(model.TrackTypeProperty, m.rows[2].trackNumber); len(ghosts) != 2 || ghosts[0] != 3 {
		t.Fatalf("unexpected ghosts: %v", ghosts)
	}

	m = press(t, m, "enter")
	if got := liveTimes(m, "hips.position"); len(got) != 2 || got[0] != 3 || got[1] != 15 {
		t.Fatalf("expected moved keys [3 15], got %v", got)
	}
	if m.frame != 3 {
		t.Fatalf("expected cursor to follow the move, got frame %d", m.frame)
	}

	reloaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	i, _ := keyframe.FindTrackByID(reloaded.Timeline.Properties, "hips.position")
	if got := keyframe.LiveTimes(reloaded.Timeline.Properties[i].Keyframes); len(got) != 2 || got[0] != 3 {
		t.Fatalf("expected commit to be saved, got %v", got)
	}

	if err := m.sync.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(pub.calls) != 1 || len(pub.calls[0].Tracks) != 1 || pub.calls[0].Tracks[0].TrackID != "hips.position" {
		t.Fatalf("unexpected publishes: %+v", pub.calls)
	}

	m = press(t, m, "u")
	if got := liveTimes(m, "hips.position"); len(got) != 2 || got[0] != 0 || got[1] != 12 {
		t.Fatalf("expected undo to restore [0 12], got %v", got)
	}
	m = press(t, m, "ctrl+r")
	if got := liveTimes(m, "hips.position"); got[0] != 3 {
		t.Fatalf("expected redo to reapply, got %v", got)
	}
}

func TestPreviewRequiresSelectionAndEscCancels(t *testing.T) {
	db, s := walkDB(t)
	m := newAppModel(Options{Store: s, DB: db})

	m = press(t, m, ">")
	if m.notice != "nothing selected" {
		t.Fatalf("expected notice, got %q", m.notice)
	}
	if _, dragging := m.ed.Drag(); dragging {
		t.Fatalf("drag must not start without a selection")
	}

	m = press(t, m, "A", "<", "<")
	if delta, dragging := m.ed.Drag(); !dragging || delta != -2 {
		t.Fatalf("expected pending -2, got %d %v", delta, dragging)
	}
	m = press(t, m, "space")
	if !strings.Contains(m.notice, "first") {
		t.Fatalf("expected selection to be blocked during a move, got %q", m.notice)
	}
	m = press(t, m, "esc")
	if _, dragging := m.ed.Drag(); dragging {
		t.Fatalf("expected esc to cancel")
	}
	if got := liveTimes(m, "hips.rotation"); len(got) != 1 || got[0] != 6 {
		t.Fatalf("cancel must leave tracks alone, got %v", got)
	}
	if n := keyframe.Count(m.ed.Timeline().SelectedProperties); n != 4 {
		t.Fatalf("expected 4 selected after select all, got %d", n)
	}

	m = press(t, m, "X")
	if n := keyframe.Count(m.ed.Timeline().SelectedProperties); n != 0 {
		t.Fatalf("expected unselect all, got %d", n)
	}
}

func TestQuitSavesSelection(t *testing.T) {
	db, s := walkDB(t)
	m := newAppModel(Options{Store: s, DB: db})

	// Layer row at frame 0 stands for hips.position@0 and spine.position@0.
	m = press(t, m, "space")
	if m.saved {
		t.Fatalf("selection should mark the model unsaved")
	}
	next, cmd := m.Update(keyMsg("q"))
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}

	reloaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := keyframe.Count(reloaded.Timeline.SelectedProperties); n != 2 {
		t.Fatalf("expected 2 saved selected keys, got %d", n)
	}
	if len(reloaded.Timeline.SelectedLayers) != 1 {
		t.Fatalf("expected derived layer selection, got %+v", reloaded.Timeline.SelectedLayers)
	}
}

func TestSyncFailureBecomesNotice(t *testing.T) {
	db, s := walkDB(t)
	pub := &fakePublisher{err: errors.New("connection refused")}
	m := newAppModel(Options{Store: s, DB: db, Publisher: pub, Debounce: 5 * time.Millisecond})

	m = press(t, m, "j", "j", "r", ">", "enter")

	select {
	case n := <-m.notices:
		next, _ := m.Update(noticeMsg(n))
		m = next.(appModel)
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a sync notice")
	}
	if !strings.Contains(m.notice, "sync failed: connection refused") {
		t.Fatalf("unexpected notice %q", m.notice)
	}
	if got := liveTimes(m, "hips.position"); got[0] != 1 {
		t.Fatalf("local edit must survive a failed publish, got %v", got)
	}
}

func TestView_ASCIIGrid(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	setGlyphs(glyphSetASCII)
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })

	db, s := walkDB(t)
	m := newAppModel(Options{Store: s, DB: db})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(appModel)
	m = press(t, m, "j", "j", "l", "l", "l", "l", "l", "l", "h", "h", "h", "h", "h", "h", "r")

	out := xansi.Strip(m.View())
	if !strings.Contains(out, "motionline  walk / base") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "2 selected") {
		t.Fatalf("missing selection count:\n%s", out)
	}
	var rotation string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "rotation") {
			rotation = line
		}
	}
	// frames 0..6 at width 2: rotation key lives at frame 6.
	if !strings.Contains(rotation, ". . . . . . o") {
		t.Fatalf("unexpected rotation row: %q", rotation)
	}

	m = press(t, m, ">")
	var position string
	for _, line := range strings.Split(xansi.Strip(m.View()), "\n") {
		if strings.Contains(line, "position") {
			position = line
			break
		}
	}
	if !strings.Contains(position, "# + ") {
		t.Fatalf("expected a ghost next to the selected key, got %q", position)
	}

	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatalf("expected help overlay")
	}
	m = press(t, m, "esc")
	if m.showHelp {
		t.Fatalf("expected esc to close help")
	}
}
