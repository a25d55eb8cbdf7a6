// Package session owns one editing session over a resident Timeline: selection gestures,
// drag previews and commits, undo/redo and publishing of committed tracks.
package session

import (
	"context"

	"motionline/internal/history"
	"motionline/internal/keyframe"
	"motionline/internal/model"
	"motionline/internal/remote"
	"motionline/internal/selection"

	"github.com/rs/zerolog"
)

type Options struct {
	AnimationID  string
	HistoryLimit int
	// Publisher receives the affected property tracks after each commit, undo and redo.
	Publisher remote.Publisher
	Logger    zerolog.Logger
}

// Editor is not safe for concurrent use; the TUI and CLI drive it from one goroutine.
type Editor struct {
	animationID string
	tl          model.Timeline
	hist        *history.History
	pub         remote.Publisher
	log         zerolog.Logger

	dragging bool
	delta    int
}

// New returns an editor over tl with empty history and no drag in progress.
func New(tl model.Timeline, opts Options) *Editor {
	return &Editor{
		animationID: opts.AnimationID,
		tl:          tl,
		hist:        history.New(opts.HistoryLimit),
		pub:         opts.Publisher,
		log:         opts.Logger,
	}
}

func (e *Editor) Timeline() model.Timeline { return e.tl }

// Reset swaps in a different timeline (e.g. another layer) and forgets history.
func (e *Editor) Reset(tl model.Timeline) {
	e.tl = tl
	e.hist = history.New(e.hist.Limit())
	e.dragging = false
	e.delta = 0
}

func (e *Editor) Select(st selection.SelectType, target selection.Target) error {
	next, err := selection.SelectKeyframes(e.tl, st, target)
	if err != nil {
		return err
	}
	e.tl = next
	return nil
}

func (e *Editor) BeginDrag() {
	e.dragging = true
	e.delta = 0
}

// PreviewDrag accumulates delta into the pending gesture and returns the running total.
// Tracks are not touched until CommitDrag.
func (e *Editor) PreviewDrag(delta int) (int, error) {
	if !e.dragging {
		return 0, model.ErrDragNotActive
	}
	e.delta += delta
	return e.delta, nil
}

// Drag reports the pending offset and whether a drag is in progress.
func (e *Editor) Drag() (int, bool) { return e.delta, e.dragging }

func (e *Editor) CancelDrag() {
	e.dragging = false
	e.delta = 0
}

// GhostTimes returns where the selected keyframes of one track would land if the
// pending drag were committed now.
func (e *Editor) GhostTimes(tt model.TrackType, trackNumber int) []int {
	if !e.dragging || e.delta == 0 {
		return nil
	}
	times := keyframe.SelectedTimes(e.tl.SelectionOf(tt), trackNumber)
	out := make([]int, 0, len(times))
	for _, t := range times {
		out = append(out, t+e.delta)
	}
	return out
}

func (e *Editor) CommitDrag(ctx context.Context) (keyframe.CommitResult, error) {
	if !e.dragging {
		return keyframe.CommitResult{}, model.ErrDragNotActive
	}
	delta := e.delta
	e.dragging = false
	e.delta = 0

	prev := e.tl
	res := keyframe.Commit(prev, delta)
	for _, s := range res.Skipped {
		e.log.Warn().
			Str("track", s.Identifier.TrackID).
			Int("time", s.Time).
			Int("delta", delta).
			Msg("selected keyframe missing; skipped")
	}
	if delta == 0 {
		return res, nil
	}

	e.hist.Push(prev)
	e.tl = res.Timeline
	e.log.Debug().Int("delta", delta).Int("moved", res.Moved).Msg("drag committed")

	var affected []int
	for _, c := range prev.SelectedProperties {
		affected = append(affected, c.Identifier.TrackNumber)
	}
	e.publish(ctx, affected)
	return res, nil
}

// Shift is BeginDrag, PreviewDrag and CommitDrag in one call.
func (e *Editor) Shift(ctx context.Context, delta int) (keyframe.CommitResult, error) {
	e.BeginDrag()
	if _, err := e.PreviewDrag(delta); err != nil {
		return keyframe.CommitResult{}, err
	}
	return e.CommitDrag(ctx)
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

func (e *Editor) Undo(ctx context.Context) bool {
	prev, ok := e.hist.Undo(e.tl)
	if !ok {
		return false
	}
	e.CancelDrag()
	e.tl = prev
	e.publish(ctx, nil)
	return true
}

func (e *Editor) Redo(ctx context.Context) bool {
	next, ok := e.hist.Redo(e.tl)
	if !ok {
		return false
	}
	e.CancelDrag()
	e.tl = next
	e.publish(ctx, nil)
	return true
}

// publish sends the given property tracks (all when nil). Failures are logged only.
func (e *Editor) publish(ctx context.Context, trackNumbers []int) {
	if e.pub == nil {
		return
	}
	p := remote.PayloadFor(e.animationID, e.tl, trackNumbers)
	if p.Empty() {
		return
	}
	if err := e.pub.Publish(ctx, p); err != nil {
		e.log.Warn().Err(err).Str("layer", p.LayerID).Int("tracks", len(p.Tracks)).Msg("publish failed")
	}
}
