package cli

import (
	"errors"
	"fmt"

	"motionline/internal/model"
)

var (
	errNoAnimation   = errors.New("no animation imported; run `motionline import <file>`")
	errNoActiveLayer = fmt.Errorf("%w; run `motionline layers use <layer-id>`", model.ErrNoActiveLayer)
	errNoRemote      = errors.New("no redis url configured; set MOTIONLINE_REDIS_URL or remote.redisUrl in config.yaml")
)

func errNotFound(kind, id string) error {
	return model.NotFoundError{Kind: kind, ID: id}
}

// Event types written to the workspace event log.
const (
	eventAnimationImport = "animation.import"
	eventLayerUse        = "layer.use"
	eventSelectionSet    = "selection.set"
	eventTimelineShift   = "timeline.shift"
	eventSyncPush        = "sync.push"
)
