// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package remotedisplay renders content on a secondary display attached to
// a casting sink and negotiates the framebuffer configuration used for it.
//
// # Overview
//
// The module is organised as a small stack:
//   - display: remote displays, sinks and attach/detach events
//   - surface: configuration selection and the render surface
//   - render: renderers driven frame by frame on a surface
//   - playback: ambient audio started alongside a session
//   - session: the single-session manager and its draw loop
//
// # Quick Start
//
//	m := session.New(
//	    session.WithQuery(query),
//	    session.WithRenderer(render.NewCubeRenderer),
//	)
//	if err := m.Attach(ctx, d); err != nil {
//	    return err
//	}
//	defer m.Detach()
//
// # Logging
//
// Nothing is logged by default. Call [SetLogger] to route log output.
package remotedisplay

// Version is the current version of the module.
const Version = "0.1.0"
