// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build cgo && portaudio

package playback

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/gogpu/remotedisplay"
)

// framesPerBuffer is about 23ms at 44.1kHz.
const framesPerBuffer = 1024

// Available reports whether this build can play audio.
func Available() bool { return true }

// TonePlayer loops a Tone on the default output device through PortAudio.
type TonePlayer struct {
	mu     sync.Mutex
	tone   *Tone
	stream *portaudio.Stream
	inited bool
	closed bool
}

// NewTonePlayer creates a player for tone. PortAudio is initialized
// lazily on the first Start.
func NewTonePlayer(tone *Tone) *TonePlayer {
	if tone == nil {
		tone = NewTone(0, 0, DefaultVolume)
	}
	return &TonePlayer{tone: tone}
}

// Start opens a stereo stream on the default output device and begins
// playback.
func (p *TonePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.stream != nil {
		return nil
	}
	if !p.inited {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("playback: initialize: %w", err)
		}
		p.inited = true
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, p.tone.SampleRate, framesPerBuffer, p.tone.Fill)
	if err != nil {
		return fmt.Errorf("playback: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("playback: start stream: %w", err)
	}
	p.stream = stream

	remotedisplay.Logger().Debug("playback: tone started",
		"frequency", p.tone.Frequency, "volume", p.tone.Volume)
	return nil
}

// Stop halts playback. The player may be started again.
func (p *TonePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *TonePlayer) stopLocked() error {
	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil

	if err := stream.Stop(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("playback: stop stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("playback: close stream: %w", err)
	}
	remotedisplay.Logger().Debug("playback: tone stopped")
	return nil
}

// Close stops playback and releases PortAudio.
func (p *TonePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	err := p.stopLocked()
	if p.inited {
		p.inited = false
		if terr := portaudio.Terminate(); terr != nil && err == nil {
			err = fmt.Errorf("playback: terminate: %w", terr)
		}
	}
	return err
}

var _ Player = (*TonePlayer)(nil)
