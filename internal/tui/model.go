package tui

import (
	"time"

	"motionline/internal/keyframe"
	"motionline/internal/model"
	"motionline/internal/remote"
	"motionline/internal/session"
	"motionline/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const (
	defaultFrameWidth = 2
	labelWidth        = 22
	minFrames         = 48
	// framePad keeps empty frames after the last keyframe so keys can move past it.
	framePad = 12
)

type Options struct {
	Store store.Store
	DB    *store.DB
	// Publisher, when set, receives committed tracks through a debouncer.
	Publisher  remote.Publisher
	Debounce   time.Duration
	Glyphs     string
	FrameWidth int
	Logger     zerolog.Logger
}

// row is one visible track line of the grid.
type row struct {
	trackType   model.TrackType
	trackNumber int
	label       string
	depth       int
}

type noticeMsg string

type appModel struct {
	store store.Store
	db    *store.DB
	ed    *session.Editor
	sync  *remote.Debounced
	log   zerolog.Logger

	notices chan string

	rows       []row
	cursorRow  int
	frame      int
	offset     int
	frameWidth int

	width  int
	height int

	keys     keyMap
	help     help.Model
	showHelp bool
	helpView viewport.Model

	notice string
	saved  bool
}

func newAppModel(opts Options) appModel {
	fw := opts.FrameWidth
	if fw <= 0 {
		fw = defaultFrameWidth
	}
	m := appModel{
		store:      opts.Store,
		db:         opts.DB,
		log:        opts.Logger,
		notices:    make(chan string, 8),
		frameWidth: fw,
		width:      100,
		height:     30,
		keys:       defaultKeyMap(),
		help:       help.New(),
		helpView:   viewport.New(80, 20),
		saved:      true,
	}

	var pub remote.Publisher
	if opts.Publisher != nil {
		notices := m.notices
		m.sync = remote.NewDebounced(remote.DebouncedOpts{
			Publisher: opts.Publisher,
			Debounce:  opts.Debounce,
			OnError: func(err error) {
				select {
				case notices <- "sync failed: " + err.Error():
				default:
				}
			},
		})
		pub = m.sync
	}

	animationID := ""
	if m.db.HasAnimation() {
		animationID = m.db.Animation.ID
	}
	m.ed = session.New(m.db.Timeline, session.Options{
		AnimationID: animationID,
		Publisher:   pub,
		// Skips surface as notices; stderr is under the alt screen.
		Logger: zerolog.Nop(),
	})
	m.rows = buildRows(m.db.Timeline)
	return m
}

// buildRows lays out the layer, then each bone followed by its properties.
func buildRows(tl model.Timeline) []row {
	var out []row
	for _, l := range tl.Layers {
		out = append(out, row{trackType: model.TrackTypeLayer, trackNumber: l.Identifier.TrackNumber, label: l.Identifier.TrackID})
		for _, b := range keyframe.ChildrenOf(tl.Bones, l.Identifier.TrackNumber) {
			out = append(out, row{trackType: model.TrackTypeBone, trackNumber: b.Identifier.TrackNumber, label: b.Identifier.TrackID, depth: 1})
			for _, p := range keyframe.ChildrenOf(tl.Properties, b.Identifier.TrackNumber) {
				label := string(p.Identifier.PropertyKind)
				if label == "" {
					label = p.Identifier.TrackID
				}
				out = append(out, row{trackType: model.TrackTypeProperty, trackNumber: p.Identifier.TrackNumber, label: label, depth: 2})
			}
		}
	}
	return out
}

func waitForNotice(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-ch)
	}
}

func (m appModel) Init() tea.Cmd {
	return waitForNotice(m.notices)
}

func (m appModel) currentRow() (row, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursorRow], true
}

func (m appModel) track(r row) (model.Track, bool) {
	tracks := m.ed.Timeline().TracksOf(r.trackType)
	i, ok := keyframe.FindTrack(tracks, r.trackNumber)
	if !ok {
		return model.Track{}, false
	}
	return tracks[i], true
}

// lastFrame is the rightmost frame the cursor may reach.
func (m appModel) lastFrame() int {
	last := 0
	for _, p := range m.ed.Timeline().Properties {
		for _, t := range keyframe.LiveTimes(p.Keyframes) {
			if t > last {
				last = t
			}
		}
	}
	if delta, dragging := m.ed.Drag(); dragging && delta > 0 {
		last += delta
	}
	if last+framePad < minFrames {
		return minFrames - 1
	}
	return last + framePad
}

func (m appModel) visibleFrames() int {
	n := (m.width - labelWidth - 1) / m.frameWidth
	if n < 4 {
		return 4
	}
	return n
}

func (m *appModel) clampScroll() {
	if m.frame < 0 {
		m.frame = 0
	}
	if last := m.lastFrame(); m.frame > last {
		m.frame = last
	}
	vis := m.visibleFrames()
	if m.frame < m.offset {
		m.offset = m.frame
	}
	if m.frame >= m.offset+vis {
		m.offset = m.frame - vis + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
