// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package session drives content on one remote display at a time.
//
// A Manager is IDLE until a display is attached. Attaching selects a
// framebuffer configuration for the display, opens a surface, initializes
// the renderer and starts a draw loop paced to the display refresh rate,
// together with looping audio. Detaching tears all of that down again.
//
// Attach, Detach and DisplayRemoved are serialized: a new attach while a
// session is active fully tears the old session down first. Detach is
// idempotent.
//
// Usage:
//
//	m := session.New(
//	    session.WithQuery(q),
//	    session.WithPlayer(player),
//	)
//	defer m.Close()
//	err := m.Run(ctx, watcher.Events())
package session
