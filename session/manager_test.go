// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/render"
	"github.com/gogpu/remotedisplay/surface"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeSink struct {
	mu        sync.Mutex
	connected bool
	fail      bool
	frames    int
}

func newSink() *fakeSink { return &fakeSink{connected: true} }

func (s *fakeSink) Present(*image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return display.ErrInvalidDisplay
	}
	s.frames++
	return nil
}

func (s *fakeSink) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeSink) breakConnection() {
	s.mu.Lock()
	s.fail = true
	s.connected = false
	s.mu.Unlock()
}

// querySink advertises its own configurations.
type querySink struct {
	*fakeSink
	configs surface.ConfigList
}

func (s querySink) QueryConfigs(ctx context.Context, c surface.Criteria) ([]surface.Candidate, error) {
	return s.configs.QueryConfigs(ctx, c)
}

type fakeRenderer struct {
	log     *eventLog
	initErr error
	display string
	colors  int
	mu      sync.Mutex
}

func (r *fakeRenderer) Initialize(s *surface.Surface, _ surface.Candidate) error {
	r.display = s.Display().ID
	r.log.add("init:" + r.display)
	return r.initErr
}

func (r *fakeRenderer) RenderFrame() error { return nil }

func (r *fakeRenderer) ReleaseResources() { r.log.add("release:" + r.display) }

func (r *fakeRenderer) ChangeColor() {
	r.mu.Lock()
	r.colors++
	r.mu.Unlock()
}

type fakePlayer struct {
	mu       sync.Mutex
	startErr error
	starts   int
	stops    int
}

func (p *fakePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	return p.startErr
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	start []Record
	end   []Record
}

func (r *fakeRecorder) SessionStarted(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = append(r.start, rec)
	return nil
}

func (r *fakeRecorder) SessionEnded(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end = append(r.end, rec)
	return nil
}

func (r *fakeRecorder) ended() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.end...)
}

var rgba8888 = surface.Config{
	ID: 1, Source: "test",
	RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8,
	DepthBits: 16, SampleBuffers: 1, Samples: 4,
}

func testDisplay(id string, sink display.Sink) display.Display {
	return display.Display{ID: id, Name: id, Width: 32, Height: 24, RefreshRate: 500, Sink: sink}
}

type fixture struct {
	m        *Manager
	log      *eventLog
	player   *fakePlayer
	recorder *fakeRecorder
	last     *fakeRenderer
}

func newFixture(t *testing.T, query surface.CapabilityQuery, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{log: &eventLog{}, player: &fakePlayer{}, recorder: &fakeRecorder{}}
	base := []Option{
		WithQuery(query),
		WithPlayer(f.player),
		WithRecorder(f.recorder),
		WithRenderer(func() render.Renderer {
			f.last = &fakeRenderer{log: f.log}
			return f.last
		}),
	}
	f.m = New(append(base, opts...)...)
	t.Cleanup(func() { _ = f.m.Close() })
	return f
}

func TestAttachDetach(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	sink := newSink()

	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", sink)))
	assert.Equal(t, Active, f.m.State())

	st := f.m.Status()
	assert.Equal(t, "A", st.DisplayID)
	assert.NotEmpty(t, st.SessionID)
	assert.Contains(t, st.Config, "msaa4")

	assert.Eventually(t, func() bool { return f.m.Status().Frames > 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.m.Detach())
	assert.Equal(t, Idle, f.m.State())
	assert.Equal(t, []string{"init:A", "release:A"}, f.log.all())
	assert.Equal(t, 1, f.player.starts)
	assert.Equal(t, 1, f.player.stops)

	ended := f.recorder.ended()
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonDetached, ended[0].Reason)
	assert.Positive(t, ended[0].Frames)
}

func TestDetachTwiceIsNoop(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", newSink())))

	require.NoError(t, f.m.Detach())
	require.NoError(t, f.m.Detach())

	assert.Equal(t, Idle, f.m.State())
	assert.Equal(t, []string{"init:A", "release:A"}, f.log.all())
	assert.Equal(t, 1, f.player.stops)
	assert.Len(t, f.recorder.ended(), 1)
}

func TestDetachWhileIdle(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	require.NoError(t, f.m.Detach())
	assert.Equal(t, Idle, f.m.State())
	assert.Empty(t, f.log.all())
	assert.Zero(t, f.player.stops)
}

func TestAttachReplacesActiveSession(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	ctx := context.Background()

	require.NoError(t, f.m.Attach(ctx, testDisplay("A", newSink())))
	require.NoError(t, f.m.Attach(ctx, testDisplay("B", newSink())))

	assert.Equal(t, []string{"init:A", "release:A", "init:B"}, f.log.all())
	assert.Equal(t, "B", f.m.Status().DisplayID)

	ended := f.recorder.ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "A", ended[0].DisplayID)
	assert.Equal(t, ReasonReplaced, ended[0].Reason)
}

func TestAttachFallsBackToSingleSample(t *testing.T) {
	plain := rgba8888
	plain.SampleBuffers, plain.Samples = 0, 0
	f := newFixture(t, surface.ConfigList{plain})

	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", newSink())))
	cfg := f.m.Session().Config()
	assert.Equal(t, uint(1), surface.SampleCount(cfg))
}

func TestAttachSelectionFailureStaysIdle(t *testing.T) {
	rgba16 := surface.Config{RedBits: 16, GreenBits: 16, BlueBits: 16, AlphaBits: 16, DepthBits: 16}
	tests := []struct {
		name  string
		query surface.CapabilityQuery
		want  error
	}{
		{"no exact colour", surface.ConfigList{rgba16}, surface.ErrNoExactColorMatch},
		{"nothing", surface.ConfigList{}, surface.ErrNoMatchingConfiguration},
		{"query failed", surface.QueryFunc(func(context.Context, surface.Criteria) ([]surface.Candidate, error) {
			return nil, errors.New("driver gone")
		}), surface.ErrQueryFailed},
		{"no query", nil, surface.ErrQueryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.query)
			err := f.m.Attach(context.Background(), testDisplay("A", newSink()))
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, Idle, f.m.State())
			assert.Empty(t, f.log.all())
			assert.Zero(t, f.player.starts)
		})
	}
}

func TestAttachInvalidDisplay(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	ctx := context.Background()
	require.NoError(t, f.m.Attach(ctx, testDisplay("A", newSink())))

	gone := newSink()
	gone.connected = false
	err := f.m.Attach(ctx, testDisplay("B", gone))
	require.ErrorIs(t, err, display.ErrInvalidDisplay)

	assert.Equal(t, Idle, f.m.State())
	assert.Equal(t, []string{"init:A", "release:A"}, f.log.all())
}

func TestAttachRendererFailureReleases(t *testing.T) {
	log := &eventLog{}
	f := newFixture(t, surface.ConfigList{rgba8888}, WithRenderer(func() render.Renderer {
		return &fakeRenderer{log: log, initErr: render.ErrUnsupportedConfig}
	}))

	err := f.m.Attach(context.Background(), testDisplay("A", newSink()))
	require.ErrorIs(t, err, render.ErrUnsupportedConfig)
	assert.Equal(t, Idle, f.m.State())
	assert.Equal(t, []string{"init:A", "release:A"}, log.all())
	assert.Zero(t, f.player.starts)
}

func TestPlayerFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	f.player.startErr = errors.New("no audio device")

	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", newSink())))
	assert.Equal(t, Active, f.m.State())

	require.NoError(t, f.m.Detach())
	assert.Zero(t, f.player.stops, "a player that failed to start is not stopped")
}

func TestSurfaceLostDetaches(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	sink := newSink()
	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", sink)))

	sink.breakConnection()

	assert.Eventually(t, func() bool { return f.m.State() == Idle }, time.Second, 5*time.Millisecond)
	ended := f.recorder.ended()
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonSurfaceLost, ended[0].Reason)
	assert.Equal(t, []string{"init:A", "release:A"}, f.log.all())
}

func TestSurfaceLostLeavesNewerSession(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	ctx := context.Background()
	require.NoError(t, f.m.Attach(ctx, testDisplay("A", newSink())))
	stale := f.m.Session().gen

	require.NoError(t, f.m.Attach(ctx, testDisplay("B", newSink())))
	f.m.surfaceLost(stale)

	assert.Equal(t, Active, f.m.State())
	assert.Equal(t, "B", f.m.Status().DisplayID)
}

func TestDisplayRemoved(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", newSink())))

	f.m.DisplayRemoved("other")
	assert.Equal(t, Active, f.m.State())

	f.m.DisplayRemoved("A")
	assert.Equal(t, Idle, f.m.State())
	ended := f.recorder.ended()
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonDisplayRemoved, ended[0].Reason)
}

func TestSinkAdvertisedConfigs(t *testing.T) {
	own := rgba8888
	own.Source = "receiver"
	f := newFixture(t, surface.ConfigList{})

	sink := querySink{fakeSink: newSink(), configs: surface.ConfigList{own}}
	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", sink)))
	assert.Contains(t, f.m.Status().Config, "receiver")
}

func TestChangeColor(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	assert.ErrorIs(t, f.m.ChangeColor(), ErrIdle)

	require.NoError(t, f.m.Attach(context.Background(), testDisplay("A", newSink())))
	require.NoError(t, f.m.ChangeColor())
	assert.Equal(t, 1, f.last.colors)
}

func TestRun(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan display.Event)

	done := make(chan error, 1)
	go func() { done <- f.m.Run(ctx, events) }()

	events <- display.Event{Kind: display.Attached, Display: testDisplay("A", newSink())}
	assert.Eventually(t, func() bool { return f.m.State() == Active }, time.Second, 5*time.Millisecond)

	events <- display.Event{Kind: display.Detached, Display: display.Display{ID: "A"}}
	assert.Eventually(t, func() bool { return f.m.State() == Idle }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunClosedChannel(t *testing.T) {
	f := newFixture(t, surface.ConfigList{rgba8888})
	events := make(chan display.Event)
	close(events)
	assert.NoError(t, f.m.Run(context.Background(), events))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "State(7)", State(7).String())
}

// liveRenderer counts initialized renderers across a manager's lifetime
// and flags frames drawn after release.
type liveRenderer struct {
	live     *atomic.Int32
	maxLive  *atomic.Int32
	late     *atomic.Int32
	released atomic.Bool
	colors   atomic.Int32
}

func (r *liveRenderer) Initialize(*surface.Surface, surface.Candidate) error {
	n := r.live.Add(1)
	for {
		m := r.maxLive.Load()
		if n <= m || r.maxLive.CompareAndSwap(m, n) {
			return nil
		}
	}
}

func (r *liveRenderer) RenderFrame() error {
	if r.released.Load() {
		r.late.Add(1)
	}
	return nil
}

func (r *liveRenderer) ReleaseResources() {
	if r.released.CompareAndSwap(false, true) {
		r.live.Add(-1)
	}
}

func (r *liveRenderer) ChangeColor() { r.colors.Add(1) }

func TestConcurrentTransitions(t *testing.T) {
	var live, maxLive, late atomic.Int32
	recorder := &fakeRecorder{}
	m := New(
		WithQuery(surface.ConfigList{rgba8888}),
		WithRecorder(recorder),
		WithRenderer(func() render.Renderer {
			return &liveRenderer{live: &live, maxLive: &maxLive, late: &late}
		}),
	)

	displays := make([]display.Display, 3)
	for i := range displays {
		displays[i] = testDisplay(fmt.Sprintf("tv%d", i), newSink())
	}

	const workers, rounds = 8, 40
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				d := displays[(w+i)%len(displays)]
				switch (w + i) % 4 {
				case 0:
					assert.NoError(t, m.Attach(context.Background(), d))
				case 1:
					assert.NoError(t, m.Detach())
				case 2:
					m.DisplayRemoved(d.ID)
				case 3:
					if err := m.ChangeColor(); err != nil {
						assert.ErrorIs(t, err, ErrIdle)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, m.Close())

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, int32(0), live.Load(), "renderers still initialized")
	assert.LessOrEqual(t, maxLive.Load(), int32(1), "two sessions were live at once")
	assert.Equal(t, int32(0), late.Load(), "frames drawn after release")

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	assert.NotEmpty(t, recorder.start)
	assert.Len(t, recorder.end, len(recorder.start))
}
