// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// DefaultRefreshRate is used when a display does not report its refresh rate.
const DefaultRefreshRate = 60.0

// ErrInvalidDisplay is returned when a display became unavailable between
// event delivery and use.
var ErrInvalidDisplay = errors.New("display: display is no longer available")

// Sink receives finished frames for a display.
//
// Present must not retain frame after it returns. Once the display is gone
// Present returns an error wrapping ErrInvalidDisplay and Connected reports
// false.
type Sink interface {
	Present(frame *image.RGBA) error
	Connected() bool
}

// Display is one physical secondary display.
type Display struct {
	// ID uniquely identifies the display for the lifetime of its connection.
	ID string

	// Name is a human readable name (output or receiver name).
	Name string

	// Width and Height are the display size in pixels.
	Width  int
	Height int

	// RefreshRate in Hz. Zero means DefaultRefreshRate.
	RefreshRate float64

	// Sink receives rendered frames.
	Sink Sink
}

// FrameInterval returns the time between frames at the display refresh rate.
func (d Display) FrameInterval() time.Duration {
	rate := d.RefreshRate
	if rate <= 0 {
		rate = DefaultRefreshRate
	}
	return time.Duration(float64(time.Second) / rate)
}

// Validate reports whether the display can back a surface right now.
func (d Display) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDisplay)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrInvalidDisplay, d.Width, d.Height)
	}
	if d.Sink == nil || !d.Sink.Connected() {
		return fmt.Errorf("%w: %s", ErrInvalidDisplay, d.ID)
	}
	return nil
}

func (d Display) String() string {
	return fmt.Sprintf("%s (%s %dx%d@%.0fHz)", d.ID, d.Name, d.Width, d.Height, d.RefreshRate)
}

// EventKind distinguishes attach and detach notifications.
type EventKind uint8

const (
	// Attached announces a display ready to present.
	Attached EventKind = iota + 1

	// Detached announces that a display went away or the cast session ended.
	Detached
)

func (k EventKind) String() string {
	switch k {
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is delivered by a casting service.
// For Detached events only Display.ID is meaningful.
type Event struct {
	Kind    EventKind
	Display Display
}

// Watcher is a casting service that announces displays.
type Watcher interface {
	Events() <-chan Event
}
