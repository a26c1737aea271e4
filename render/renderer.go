// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/remotedisplay/surface"
)

// Errors returned by renderers.
var (
	// ErrNotInitialized is returned by RenderFrame before Initialize or
	// after ReleaseResources.
	ErrNotInitialized = errors.New("render: renderer not initialized")

	// ErrUnsupportedConfig is returned by Initialize for configurations the
	// renderer cannot draw with.
	ErrUnsupportedConfig = errors.New("render: unsupported configuration")
)

// Renderer draws frames onto a surface.
//
// Renderers are NOT thread-safe except where noted; a session drives one
// from its draw loop goroutine only.
type Renderer interface {
	// Initialize binds the renderer to a surface and its configuration.
	Initialize(s *surface.Surface, c surface.Candidate) error

	// RenderFrame draws the next frame into the surface back buffer.
	RenderFrame() error

	// ReleaseResources frees everything acquired by Initialize.
	// Safe to call more than once.
	ReleaseResources()
}

// Factory creates a fresh renderer for each session.
type Factory func() Renderer

// ColorChanger is implemented by renderers whose colour can be changed
// while running. ChangeColor is safe for concurrent use.
type ColorChanger interface {
	ChangeColor()
}
