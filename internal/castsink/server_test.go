// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package castsink

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/surface"
)

func setup(t *testing.T) (*Server, string) {
	t.Helper()
	srv := New(WithQuality(70))
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		_ = srv.Close()
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string, hello Hello) (*websocket.Conn, Welcome) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })

	require.NoError(t, wsjson.Write(ctx, conn, hello))
	var w Welcome
	require.NoError(t, wsjson.Read(ctx, conn, &w))
	return conn, w
}

func nextEvent(t *testing.T, srv *Server) display.Event {
	t.Helper()
	select {
	case ev := <-srv.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for display event")
		return display.Event{}
	}
}

func TestReceiverLifecycle(t *testing.T) {
	srv, url := setup(t)

	conn, welcome := dial(t, url, Hello{Type: TypeHello, Name: "kitchen", Width: 64, Height: 32, Refresh: 30})
	assert.Equal(t, TypeWelcome, welcome.Type)
	assert.True(t, strings.HasPrefix(welcome.ID, "cast-"))

	ev := nextEvent(t, srv)
	require.Equal(t, display.Attached, ev.Kind)
	d := ev.Display
	assert.Equal(t, welcome.ID, d.ID)
	assert.Equal(t, "kitchen", d.Name)
	assert.Equal(t, 64, d.Width)
	assert.Equal(t, 32, d.Height)
	assert.Equal(t, 30.0, d.RefreshRate)
	require.NoError(t, d.Validate())
	assert.Equal(t, 1, srv.Receivers())

	_, advertises := d.Sink.(surface.CapabilityQuery)
	assert.False(t, advertises)

	frame := image.NewRGBA(image.Rect(0, 0, 64, 32))
	require.NoError(t, d.Sink.Present(frame))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), img.Bounds())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	ev = nextEvent(t, srv)
	assert.Equal(t, display.Detached, ev.Kind)
	assert.Equal(t, welcome.ID, ev.Display.ID)
	assert.False(t, d.Sink.Connected())
	assert.ErrorIs(t, d.Sink.Present(frame), display.ErrInvalidDisplay)
	assert.Equal(t, 0, srv.Receivers())
}

func TestReceiverAdvertisedConfigs(t *testing.T) {
	srv, url := setup(t)

	dial(t, url, Hello{
		Type: TypeHello, Name: "projector", Width: 32, Height: 32,
		Configs: []ConfigMessage{
			{Red: 5, Green: 6, Blue: 5, Depth: 16},
			{Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 24, Stencil: 8, Samples: 4},
		},
	})
	ev := nextEvent(t, srv)
	q, ok := ev.Display.Sink.(surface.CapabilityQuery)
	require.True(t, ok)

	req := surface.Request{RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 16, SampleBuffers: 1, Samples: 4}
	cfg, err := surface.Select(context.Background(), req, q)
	require.NoError(t, err)
	assert.Equal(t, uint(4), surface.SampleCount(cfg))
	assert.Contains(t, surface.Describe(cfg), "projector")
}

func TestRejectsBadHello(t *testing.T) {
	tests := []struct {
		name  string
		hello Hello
	}{
		{"wrong type", Hello{Type: "frame", Width: 10, Height: 10}},
		{"zero size", Hello{Type: TypeHello}},
		{"too large", Hello{Type: TypeHello, Width: maxDimension + 1, Height: 10}},
		{"negative refresh", Hello{Type: TypeHello, Width: 10, Height: 10, Refresh: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, url := setup(t)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, _, err := websocket.Dial(ctx, url, nil)
			require.NoError(t, err)
			defer conn.CloseNow()

			require.NoError(t, wsjson.Write(ctx, conn, tt.hello))
			_, _, err = conn.Read(ctx)
			require.Error(t, err)
			assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))

			select {
			case ev := <-srv.Events():
				t.Fatalf("unexpected event %v", ev.Kind)
			default:
			}
		})
	}
}

func TestCloseDisconnectsReceivers(t *testing.T) {
	srv, url := setup(t)
	conn, _ := dial(t, url, Hello{Type: TypeHello, Width: 8, Height: 8})
	ev := nextEvent(t, srv)

	// Close waits for the close handshake, which needs the client reading.
	closed := make(chan error, 1)
	go func() { closed <- srv.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))

	require.NoError(t, <-closed)
	assert.False(t, ev.Display.Sink.Connected())
}

func TestHelloConfigList(t *testing.T) {
	h := Hello{Configs: []ConfigMessage{{Red: 8, Green: 8, Blue: 8, Samples: 1}, {Red: 8, Green: 8, Blue: 8, Samples: 8}}}
	list := h.configList("tv")
	require.Len(t, list, 2)
	assert.Equal(t, uint(0), list[0].SampleBuffers)
	assert.Equal(t, uint(1), list[1].SampleBuffers)
	assert.Equal(t, uint(8), list[1].Samples)
	assert.Equal(t, "tv", list[1].Source)
	assert.Equal(t, 2, list[1].ID)
}
