// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/render"
	"github.com/gogpu/remotedisplay/surface"
)

// Session is the content bound to one attached display.
// Its accessors are safe for concurrent use.
type Session struct {
	id       string
	gen      uint64
	display  display.Display
	config   surface.Candidate
	surface  *surface.Surface
	renderer render.Renderer
	started  time.Time
	playing  bool

	frames atomic.Uint64
	stop   chan struct{}
	done   chan struct{}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Display returns the display the session renders to.
func (s *Session) Display() display.Display { return s.display }

// Config returns the selected framebuffer configuration.
func (s *Session) Config() surface.Candidate { return s.config }

// Started returns when the session became active.
func (s *Session) Started() time.Time { return s.started }

// Frames returns the number of frames rendered so far.
func (s *Session) Frames() uint64 { return s.frames.Load() }

func (s *Session) record() Record {
	return Record{
		ID:          s.id,
		DisplayID:   s.display.ID,
		DisplayName: s.display.Name,
		Width:       s.display.Width,
		Height:      s.display.Height,
		Config:      surface.Describe(s.config),
		Started:     s.started,
	}
}

// drawLoop renders and presents one frame per refresh interval until stop
// is closed or the surface is lost. On loss it calls lost from a new
// goroutine and returns without touching the session again.
func (s *Session) drawLoop(log *slog.Logger, lost func(gen uint64)) {
	defer close(s.done)

	ticker := time.NewTicker(s.display.FrameInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		if err := s.renderer.RenderFrame(); err != nil {
			log.Warn("session: render frame failed", "session", s.id, "err", err)
			continue
		}
		s.frames.Add(1)

		if err := s.surface.Present(); err != nil {
			if errors.Is(err, surface.ErrSurfaceLost) {
				log.Warn("session: surface lost", "session", s.id, "display", s.display.ID, "err", err)
				go lost(s.gen)
				return
			}
			log.Warn("session: present failed", "session", s.id, "err", err)
		}
	}
}

// halt stops the draw loop and waits for it to exit.
func (s *Session) halt() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}
