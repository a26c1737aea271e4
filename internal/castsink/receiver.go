// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package castsink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/surface"
)

// receiver is the display.Sink for one connected receiver.
type receiver struct {
	id           string
	conn         *websocket.Conn
	quality      int
	writeTimeout time.Duration

	connected atomic.Bool
	frames    atomic.Uint64

	mu  sync.Mutex
	buf bytes.Buffer
}

// Present encodes frame as JPEG and sends it as one binary message.
func (r *receiver) Present(frame *image.RGBA) error {
	if !r.connected.Load() {
		return fmt.Errorf("%w: receiver %s disconnected", display.ErrInvalidDisplay, r.id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, frame, &jpeg.Options{Quality: r.quality}); err != nil {
		return fmt.Errorf("castsink: encode frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()
	if err := r.conn.Write(ctx, websocket.MessageBinary, r.buf.Bytes()); err != nil {
		r.connected.Store(false)
		return fmt.Errorf("%w: receiver %s: %w", display.ErrInvalidDisplay, r.id, err)
	}
	r.frames.Add(1)
	return nil
}

// Connected reports whether the receiver can still take frames.
func (r *receiver) Connected() bool { return r.connected.Load() }

// advertisingReceiver is a receiver that announced its own configurations.
type advertisingReceiver struct {
	*receiver
	configs surface.ConfigList
}

// QueryConfigs implements surface.CapabilityQuery.
func (r advertisingReceiver) QueryConfigs(ctx context.Context, c surface.Criteria) ([]surface.Candidate, error) {
	return r.configs.QueryConfigs(ctx, c)
}

var (
	_ display.Sink            = (*receiver)(nil)
	_ surface.CapabilityQuery = advertisingReceiver{}
)
