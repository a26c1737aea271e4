// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"log/slog"

	"github.com/gogpu/remotedisplay/playback"
	"github.com/gogpu/remotedisplay/render"
	"github.com/gogpu/remotedisplay/surface"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	query    surface.CapabilityQuery
	renderer render.Factory
	player   playback.Player
	profile  surface.Request
	recorder Recorder
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		renderer: func() render.Renderer { return render.NewCubeRenderer() },
		player:   playback.Nop{},
		profile:  DefaultProfile,
		recorder: nopRecorder{},
	}
}

// WithQuery sets the capability query used for displays that do not
// advertise their own configurations.
func WithQuery(q surface.CapabilityQuery) Option {
	return func(o *options) {
		o.query = q
	}
}

// WithRenderer sets the factory producing one renderer per session.
func WithRenderer(f render.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.renderer = f
		}
	}
}

// WithPlayer sets the audio player started with each session.
func WithPlayer(p playback.Player) Option {
	return func(o *options) {
		if p != nil {
			o.player = p
		}
	}
}

// WithProfile overrides DefaultProfile.
func WithProfile(r surface.Request) Option {
	return func(o *options) {
		o.profile = r
	}
}

// WithRecorder sets where session start and end are recorded.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger sets a logger for this manager only.
// By default the package-wide remotedisplay logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
