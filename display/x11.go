// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package display

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/gogpu/remotedisplay"
)

// DefaultPollInterval is how often X11Watcher re-reads the RandR layout.
const DefaultPollInterval = 2 * time.Second

// monitor is one active RandR CRTC.
type monitor struct {
	output  string
	x, y    int
	width   int
	height  int
	rate    float64
	primary bool
}

func (m monitor) id() string { return "x11:" + m.output }

// X11Watcher announces secondary X11 monitors as remote displays.
type X11Watcher struct {
	xu       *xgbutil.XUtil
	interval time.Duration
	skip     string

	events chan Event

	mu    sync.Mutex
	known map[string]*x11Sink
}

// NewX11Watcher connects to the X server named by displayName ("" uses
// $DISPLAY). The monitor flagged primary by RandR, and the output named skip
// if not empty, are never announced.
func NewX11Watcher(displayName string, interval time.Duration, skip string) (*X11Watcher, error) {
	xu, err := xgbutil.NewConnDisplay(displayName)
	if err != nil {
		return nil, fmt.Errorf("display: x11 connect: %w", err)
	}
	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("display: randr init failed: %w", err)
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &X11Watcher{
		xu:       xu,
		interval: interval,
		skip:     skip,
		events:   make(chan Event, 8),
		known:    make(map[string]*x11Sink),
	}, nil
}

// Events returns the attach/detach stream. It is closed when Run returns.
func (w *X11Watcher) Events() <-chan Event {
	return w.events
}

// Run polls the monitor layout until ctx is done.
func (w *X11Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.closeAll()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.poll(ctx); err != nil {
			remotedisplay.Logger().Warn("display: x11 poll failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *X11Watcher) poll(ctx context.Context) error {
	current, err := w.monitors()
	if err != nil {
		return err
	}

	w.mu.Lock()
	added, removed := diffMonitors(w.known, current, w.skip)
	var out []Event
	for _, id := range removed {
		s := w.known[id]
		delete(w.known, id)
		s.disconnect()
		out = append(out, Event{Kind: Detached, Display: Display{ID: id}})
	}
	for _, m := range added {
		s, err := newX11Sink(w.xu, m)
		if err != nil {
			remotedisplay.Logger().Warn("display: x11 window create failed", "output", m.output, "err", err)
			continue
		}
		w.known[m.id()] = s
		out = append(out, Event{Kind: Attached, Display: Display{
			ID:          m.id(),
			Name:        m.output,
			Width:       m.width,
			Height:      m.height,
			RefreshRate: m.rate,
			Sink:        s,
		}})
	}
	w.mu.Unlock()

	for _, ev := range out {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// diffMonitors returns monitors that should be announced and ids of known
// displays that disappeared.
func diffMonitors(known map[string]*x11Sink, current []monitor, skip string) (added []monitor, removed []string) {
	seen := make(map[string]bool, len(current))
	for _, m := range current {
		if m.primary || (skip != "" && m.output == skip) {
			continue
		}
		seen[m.id()] = true
		if _, ok := known[m.id()]; !ok {
			added = append(added, m)
		}
	}
	for id := range known {
		if !seen[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// monitors reads active CRTCs through RandR.
func (w *X11Watcher) monitors() ([]monitor, error) {
	conn := w.xu.Conn()
	root := w.xu.RootWin()

	resources, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if p, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = p.Output
	}

	var out []monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if oi, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(oi.Name)
		}

		out = append(out, monitor{
			output:  name,
			x:       int(info.X),
			y:       int(info.Y),
			width:   int(info.Width),
			height:  int(info.Height),
			rate:    modeRate(resources.Modes, uint32(info.Mode)),
			primary: info.Outputs[0] == primary,
		})
	}
	return out, nil
}

// modeRate computes the vertical refresh of a mode, 0 if unknown.
func modeRate(modes []randr.ModeInfo, id uint32) float64 {
	for _, m := range modes {
		if m.Id != id {
			continue
		}
		if m.Htotal == 0 || m.Vtotal == 0 {
			return 0
		}
		return float64(m.DotClock) / (float64(m.Htotal) * float64(m.Vtotal))
	}
	return 0
}

func (w *X11Watcher) closeAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, s := range w.known {
		s.disconnect()
		delete(w.known, id)
	}
}

// x11Sink shows frames in an override-redirect window covering a monitor.
type x11Sink struct {
	xu  *xgbutil.XUtil
	win *xwindow.Window

	mu        sync.Mutex
	connected bool
}

func newX11Sink(xu *xgbutil.XUtil, m monitor) (*x11Sink, error) {
	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, err
	}
	win.Create(xu.RootWin(), m.x, m.y, m.width, m.height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect, 0, 1)
	win.Map()
	return &x11Sink{xu: xu, win: win, connected: true}, nil
}

func (s *x11Sink) Present(frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrInvalidDisplay
	}

	ximg := xgraphics.NewConvert(s.xu, frame)
	defer ximg.Destroy()
	if err := ximg.XSurfaceSet(s.win.Id); err != nil {
		return fmt.Errorf("display: x11 surface: %w", err)
	}
	ximg.XDraw()
	ximg.XPaint(s.win.Id)
	return nil
}

func (s *x11Sink) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *x11Sink) disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return
	}
	s.connected = false
	s.win.Destroy()
}
