// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package playback

import "errors"

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("playback: player closed")

// Player starts and stops looping session audio.
//
// Start on a running player and Stop on a stopped player are no-ops.
type Player interface {
	Start() error
	Stop() error
}

// Nop is a Player that does nothing.
type Nop struct{}

// Start implements Player.
func (Nop) Start() error { return nil }

// Stop implements Player.
func (Nop) Stop() error { return nil }

var _ Player = Nop{}
