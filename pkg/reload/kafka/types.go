package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/mohammed-shakir/crs-transform/internal/crs"
)

type Op string

const (
	OpSet    Op = "set"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	// OpReset restores the exclusions the service started with.
	OpReset Op = "reset"
)

// WireEvent is one exclusion update as published on the reload topic.
type WireEvent struct {
	Version uint64    `json:"version"`
	Op      Op        `json:"op"`
	Source  string    `json:"source,omitempty"`
	Targets []string  `json:"targets,omitempty"`
	TS      time.Time `json:"ts"`
}

var ErrInvalidEvent = errors.New("invalid exclusion update")

// Validate checks the op and normalizes the identifiers to AUTH:CODE.
func (w *WireEvent) Validate() error {
	switch w.Op {
	case OpReset:
		return nil
	case OpSet, OpAdd, OpRemove:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidEvent, w.Op)
	}
	src, err := crs.Normalize(w.Source)
	if err != nil {
		return fmt.Errorf("%w: source: %v", ErrInvalidEvent, err)
	}
	w.Source = src
	for i, t := range w.Targets {
		id, err := crs.Normalize(t)
		if err != nil {
			return fmt.Errorf("%w: target %d: %v", ErrInvalidEvent, i, err)
		}
		w.Targets[i] = id
	}
	return nil
}

// dedupeKey scopes version ordering: per source, with resets on their own.
func (w *WireEvent) dedupeKey() string {
	if w.Op == OpReset {
		return "*reset"
	}
	return w.Source
}
