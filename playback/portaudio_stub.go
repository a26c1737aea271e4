// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !cgo || !portaudio

package playback

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned by TonePlayer.Start in builds without audio
// output. Build with cgo and the portaudio tag to enable it.
var ErrUnavailable = errors.New("playback: audio output not built in")

// Available reports whether this build can play audio.
func Available() bool { return false }

// TonePlayer stands in for the PortAudio player. Start always fails with
// ErrUnavailable.
type TonePlayer struct {
	mu     sync.Mutex
	closed bool
}

// NewTonePlayer creates a player. The tone is ignored.
func NewTonePlayer(*Tone) *TonePlayer {
	return &TonePlayer{}
}

// Start implements Player.
func (p *TonePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return ErrUnavailable
}

// Stop implements Player.
func (p *TonePlayer) Stop() error { return nil }

// Close marks the player closed.
func (p *TonePlayer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

var _ Player = (*TonePlayer)(nil)
