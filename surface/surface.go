// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/remotedisplay/display"
)

// Surface is the render target bound to one display and one selected
// configuration.
//
// The back buffer is written by a single renderer goroutine. Present,
// Invalidate and Release may be called from any goroutine.
type Surface struct {
	display display.Display
	config  Candidate
	format  gputypes.TextureFormat
	adapter gpucontext.AdapterInfo
	back    *image.RGBA

	mu        sync.Mutex
	lost      bool
	released  bool
	presented uint64
}

// Open creates a surface for d using configuration c.
// It fails with display.ErrInvalidDisplay if d cannot be presented to.
func Open(d display.Display, c Candidate) (*Surface, error) {
	if c == nil {
		return nil, fmt.Errorf("surface: nil configuration")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Surface{
		display: d,
		config:  c,
		format:  FormatOf(c),
		adapter: AdapterOf(c),
		back:    image.NewRGBA(image.Rect(0, 0, d.Width, d.Height)),
	}, nil
}

// Display returns the display the surface is bound to.
func (s *Surface) Display() display.Display { return s.display }

// Config returns the configuration the surface was created with.
func (s *Surface) Config() Candidate { return s.config }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.back.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.back.Rect.Dy() }

// BackBuffer returns the image the next frame is drawn into.
func (s *Surface) BackBuffer() *image.RGBA { return s.back }

// Present hands the back buffer to the display sink.
// After the first failure, and after Invalidate or Release, Present returns
// ErrSurfaceLost without touching the sink.
func (s *Surface) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lost || s.released {
		return ErrSurfaceLost
	}
	if err := s.display.Sink.Present(s.back); err != nil {
		s.lost = true
		return fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}
	s.presented++
	return nil
}

// Invalidate marks the surface lost, e.g. when its display was removed.
func (s *Surface) Invalidate() {
	s.mu.Lock()
	s.lost = true
	s.mu.Unlock()
}

// Valid reports whether frames can still be presented.
func (s *Surface) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.lost && !s.released
}

// Presented returns the number of frames delivered to the sink.
func (s *Surface) Presented() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// Release detaches the surface from its display. Safe to call repeatedly.
func (s *Surface) Release() {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
}

// Device returns nil: frames are composed on the CPU.
func (s *Surface) Device() gpucontext.Device { return nil }

// Queue returns nil: frames are composed on the CPU.
func (s *Surface) Queue() gpucontext.Queue { return nil }

// Adapter returns nil: frames are composed on the CPU.
func (s *Surface) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the colour format of the selected configuration.
func (s *Surface) SurfaceFormat() gputypes.TextureFormat { return s.format }

// AdapterInfo returns the device that offered the surface configuration.
func (s *Surface) AdapterInfo() gpucontext.AdapterInfo { return s.adapter }

// Ensure Surface can be handed to gpucontext consumers.
var _ gpucontext.DeviceProvider = (*Surface)(nil)
