package model

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

var (
	ErrNoActiveLayer = errors.New("no active layer")
	ErrDragNotActive = errors.New("no drag in progress")
)
