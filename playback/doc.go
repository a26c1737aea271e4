// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package playback provides the audio that accompanies a remote display
// session.
//
// A Player is started when a session becomes active and stopped when it is
// torn down. Playback failures never affect the session itself.
package playback
