// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/render"
	"github.com/gogpu/remotedisplay/surface"
)

// Manager errors.
var (
	// ErrIdle is returned by operations that need an active session.
	ErrIdle = errors.New("session: no active session")

	// ErrColorUnsupported is returned by ChangeColor when the renderer
	// cannot change colour.
	ErrColorUnsupported = errors.New("session: renderer does not support color change")
)

// State is the manager state.
type State uint8

const (
	// Idle means no display is attached.
	Idle State = iota

	// Active means a session is rendering to a display.
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Status is a snapshot of the manager.
type Status struct {
	State       State
	SessionID   string
	DisplayID   string
	DisplayName string
	Width       int
	Height      int
	Config      string
	Frames      uint64
	Presented   uint64
	Started     time.Time
	Uptime      time.Duration
}

// Manager owns at most one Session.
//
// All state transitions hold mu. The draw loop never takes mu, so
// transitions can wait for it to exit.
type Manager struct {
	opts options

	mu     sync.Mutex
	active *Session
	gen    uint64
}

// New creates an idle Manager.
func New(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{opts: o}
}

func (m *Manager) log() *slog.Logger {
	if m.opts.logger != nil {
		return m.opts.logger
	}
	return remotedisplay.Logger()
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Idle
	}
	return Active
}

// Session returns the active session, or nil when idle.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Status returns a snapshot of the manager and its session.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.active
	if s == nil {
		return Status{State: Idle}
	}
	return Status{
		State:       Active,
		SessionID:   s.id,
		DisplayID:   s.display.ID,
		DisplayName: s.display.Name,
		Width:       s.display.Width,
		Height:      s.display.Height,
		Config:      surface.Describe(s.config),
		Frames:      s.frames.Load(),
		Presented:   s.surface.Presented(),
		Started:     s.started,
		Uptime:      time.Since(s.started),
	}
}

// Attach starts a session on d, replacing any active session.
//
// On failure every partially created resource is released, the manager is
// left idle and the error is returned. Nothing is retried.
func (m *Manager) Attach(ctx context.Context, d display.Display) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.detachLocked(ReasonReplaced)
	}

	s, err := m.setup(ctx, d)
	if err != nil {
		if errors.Is(err, display.ErrInvalidDisplay) {
			m.log().Info("session: display removed during attach", "display", d.ID, "err", err)
		} else {
			m.log().Error("session: attach failed", "display", d.ID, "err", err)
		}
		return err
	}

	m.gen++
	s.gen = m.gen
	m.active = s
	go s.drawLoop(m.log(), m.surfaceLost)

	if err := m.opts.player.Start(); err != nil {
		m.log().Warn("session: playback start failed", "session", s.id, "err", err)
	} else {
		s.playing = true
	}

	if err := m.opts.recorder.SessionStarted(ctx, s.record()); err != nil {
		m.log().Warn("session: record start failed", "session", s.id, "err", err)
	}

	m.log().Info("session: attached",
		"session", s.id,
		"display", d.String(),
		"config", surface.Describe(s.config))
	return nil
}

// setup builds a session for d without starting it.
func (m *Manager) setup(ctx context.Context, d display.Display) (*Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	query := m.opts.query
	if q, ok := d.Sink.(surface.CapabilityQuery); ok {
		query = q
	}

	cfg, err := surface.Select(ctx, m.opts.profile, query)
	if err != nil {
		return nil, fmt.Errorf("session: select configuration for %s: %w", d.ID, err)
	}

	surf, err := surface.Open(d, cfg)
	if err != nil {
		return nil, err
	}

	r := m.opts.renderer()
	if err := r.Initialize(surf, cfg); err != nil {
		r.ReleaseResources()
		surf.Release()
		return nil, fmt.Errorf("session: initialize renderer: %w", err)
	}

	return &Session{
		id:       uuid.NewString(),
		display:  d,
		config:   cfg,
		surface:  surf,
		renderer: r,
		started:  time.Now(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Detach tears down the active session. Detaching while idle does nothing.
func (m *Manager) Detach() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked(ReasonDetached)
	return nil
}

// DisplayRemoved detaches if the active session is bound to display id.
func (m *Manager) DisplayRemoved(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.display.ID != id {
		m.log().Debug("session: removed display not active", "display", id)
		return
	}
	m.active.surface.Invalidate()
	m.detachLocked(ReasonDisplayRemoved)
}

// Close detaches any active session. The manager may still be reused.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked(ReasonShutdown)
	return nil
}

// surfaceLost is called by a draw loop that lost its surface.
// A newer session is left alone.
func (m *Manager) surfaceLost(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.gen != gen {
		return
	}
	m.detachLocked(ReasonSurfaceLost)
}

func (m *Manager) detachLocked(reason EndReason) {
	s := m.active
	if s == nil {
		return
	}

	if s.playing {
		if err := m.opts.player.Stop(); err != nil {
			m.log().Warn("session: playback stop failed", "session", s.id, "err", err)
		}
		s.playing = false
	}

	s.halt()
	s.renderer.ReleaseResources()
	s.surface.Release()
	m.active = nil

	rec := s.record()
	rec.Ended = time.Now()
	rec.Frames = s.frames.Load()
	rec.Reason = reason
	if err := m.opts.recorder.SessionEnded(context.Background(), rec); err != nil {
		m.log().Warn("session: record end failed", "session", s.id, "err", err)
	}

	m.log().Info("session: detached",
		"session", s.id,
		"display", s.display.ID,
		"reason", string(reason),
		"frames", rec.Frames,
		"uptime", rec.Ended.Sub(s.started).Round(time.Millisecond))
}

// ChangeColor asks the active renderer to switch colour.
func (m *Manager) ChangeColor() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ErrIdle
	}
	cc, ok := m.active.renderer.(render.ColorChanger)
	if !ok {
		return ErrColorUnsupported
	}
	cc.ChangeColor()
	return nil
}

// Run feeds display events into the manager until ctx is done or events
// is closed. Attach failures are logged and do not stop Run.
func (m *Manager) Run(ctx context.Context, events <-chan display.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case display.Attached:
				// Errors are already logged by Attach.
				_ = m.Attach(ctx, ev.Display)
			case display.Detached:
				m.DisplayRemoved(ev.Display.ID)
			default:
				m.log().Warn("session: unknown display event", "kind", ev.Kind.String())
			}
		}
	}
}
