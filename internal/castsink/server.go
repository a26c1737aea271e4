// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package castsink lets remote receivers act as casting displays over
// WebSocket.
//
// A receiver connects, sends a Hello describing its screen and optionally
// the framebuffer configurations it supports, and gets a Welcome back.
// From then on it receives one binary JPEG message per frame. Closing the
// connection removes the display.
package castsink

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/display"
)

// Defaults.
const (
	DefaultQuality      = 80
	DefaultWriteTimeout = 2 * time.Second
	helloTimeout        = 10 * time.Second
	eventBuffer         = 16
)

// Option configures a Server.
type Option func(*Server)

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(s *Server) {
		if q >= 1 && q <= 100 {
			s.quality = q
		}
	}
}

// WithWriteTimeout bounds how long one frame may take to send.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// Server accepts receivers and announces them as displays.
// It implements display.Watcher and http.Handler.
type Server struct {
	quality      int
	writeTimeout time.Duration

	events    chan display.Event
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	receivers map[string]*receiver
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		quality:      DefaultQuality,
		writeTimeout: DefaultWriteTimeout,
		events:       make(chan display.Event, eventBuffer),
		done:         make(chan struct{}),
		receivers:    make(map[string]*receiver),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events implements display.Watcher.
func (s *Server) Events() <-chan display.Event { return s.events }

// Receivers returns the number of connected receivers.
func (s *Server) Receivers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receivers)
}

// ServeHTTP upgrades the request and serves one receiver until it leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := remotedisplay.Logger()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn("castsink: websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx := r.Context()

	helloCtx, cancel := context.WithTimeout(ctx, helloTimeout)
	var hello Hello
	err = wsjson.Read(helloCtx, conn, &hello)
	cancel()
	if err != nil {
		log.Debug("castsink: no hello", "remote", r.RemoteAddr, "err", err)
		return
	}
	if err := hello.validate(); err != nil {
		log.Warn("castsink: rejected receiver", "remote", r.RemoteAddr, "err", err)
		_ = conn.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}

	rcv := &receiver{
		id:           "cast-" + uuid.NewString(),
		conn:         conn,
		quality:      s.quality,
		writeTimeout: s.writeTimeout,
	}
	rcv.connected.Store(true)

	if err := wsjson.Write(ctx, conn, Welcome{Type: TypeWelcome, ID: rcv.id}); err != nil {
		log.Debug("castsink: welcome failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	name := hello.Name
	if name == "" {
		name = r.RemoteAddr
	}
	var sink display.Sink = rcv
	if len(hello.Configs) > 0 {
		sink = advertisingReceiver{receiver: rcv, configs: hello.configList(name)}
	}
	d := display.Display{
		ID:          rcv.id,
		Name:        name,
		Width:       hello.Width,
		Height:      hello.Height,
		RefreshRate: hello.Refresh,
		Sink:        sink,
	}

	s.mu.Lock()
	s.receivers[rcv.id] = rcv
	s.mu.Unlock()

	log.Info("castsink: receiver connected", "display", d.String(), "remote", r.RemoteAddr,
		"configs", len(hello.Configs))
	if !s.emit(ctx, display.Event{Kind: display.Attached, Display: d}) {
		s.remove(rcv)
		return
	}

	// Receivers only speak once; anything else is drained until close.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			log.Debug("castsink: receiver read ended", "display", rcv.id, "err", err)
			break
		}
	}

	s.remove(rcv)
	log.Info("castsink: receiver disconnected", "display", rcv.id, "frames", rcv.frames.Load())
	s.emit(context.Background(), display.Event{Kind: display.Detached, Display: display.Display{ID: rcv.id}})
}

func (s *Server) remove(rcv *receiver) {
	rcv.connected.Store(false)
	s.mu.Lock()
	delete(s.receivers, rcv.id)
	s.mu.Unlock()
}

// emit delivers ev unless ctx is done or the server is closed.
func (s *Server) emit(ctx context.Context, ev display.Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
	case <-s.done:
	}
	remotedisplay.Logger().Warn("castsink: dropped display event",
		"kind", ev.Kind.String(), "display", ev.Display.ID)
	return false
}

// Close disconnects every receiver. Events is not closed, so a pending
// consumer is never woken by a zero event.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.receivers))
	for _, rcv := range s.receivers {
		rcv.connected.Store(false)
		conns = append(conns, rcv.conn)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
	return nil
}

var (
	_ display.Watcher = (*Server)(nil)
	_ http.Handler    = (*Server)(nil)
)
