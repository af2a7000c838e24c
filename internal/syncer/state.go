// Package syncer pulls note collections from an origin (remote drive or
// local vault), replaces the repository with the parsed result and tracks
// the sync lifecycle.
package syncer

import (
	"fmt"
	"time"

	"github.com/starford/lumen/internal/apperr"
)

// Status is a sync lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrInvalidTransition is returned for a move the lifecycle does not allow.
var ErrInvalidTransition = fmt.Errorf("%w: invalid sync transition", apperr.ErrConflict)

// State is a point-in-time view of the syncer.
type State struct {
	Status   Status     `json:"status"`
	Message  string     `json:"message,omitempty"`
	LastSync *time.Time `json:"lastSync,omitempty"`
	Notes    int        `json:"notes"`
}

// Terminal reports whether s ends a sync run.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	if to == StatusIdle {
		return true
	}
	switch from {
	case StatusIdle, StatusSuccess, StatusError:
		return to == StatusSyncing
	case StatusSyncing:
		return to.Terminal()
	}
	return false
}

func transition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
