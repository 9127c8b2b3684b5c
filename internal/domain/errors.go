package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoActiveTheme  = errors.New("no active theme")
	ErrUnknownTheme   = errors.New("unknown theme")
	ErrDragInProgress = errors.New("drag already in progress")
	ErrNoActiveDrag   = errors.New("no active drag")
)
