// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package display describes remote displays and the events that announce
// them.
//
// A [Display] is a physical secondary screen reached through a [Sink]. Casting
// services deliver [Event] values when a display becomes available or goes
// away; the session manager consumes them.
//
// [X11Watcher] is a casting service for local multi-head setups: every
// non-primary RandR monitor is announced as a remote display and frames are
// shown in a borderless window covering it.
package display
