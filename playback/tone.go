// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package playback

import (
	"math"
)

// Tone defaults.
const (
	DefaultVolume     = 0.1
	DefaultFrequency  = 220.0
	DefaultSampleRate = 44100.0
)

// Tone is a looping sine oscillator with a slow swell, producing float32
// samples in [-Volume, Volume].
//
// Tone is not safe for concurrent use.
type Tone struct {
	Frequency  float64
	SampleRate float64
	Volume     float64

	phase float64
	swell float64
}

// NewTone returns a tone with the given parameters. Non-positive values
// fall back to the defaults; volume is clamped to [0, 1].
func NewTone(frequency, sampleRate, volume float64) *Tone {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return &Tone{Frequency: frequency, SampleRate: sampleRate, Volume: volume}
}

// swellHz is the rate of the amplitude swell.
const swellHz = 0.25

// Fill writes the next len(out[0]) frames into every channel of out.
func (t *Tone) Fill(out [][]float32) {
	if len(out) == 0 {
		return
	}
	step := 2 * math.Pi * t.Frequency / t.SampleRate
	swellStep := 2 * math.Pi * swellHz / t.SampleRate
	for i := range out[0] {
		amp := t.Volume * (0.75 + 0.25*math.Sin(t.swell))
		v := float32(amp * math.Sin(t.phase))
		for ch := range out {
			if i < len(out[ch]) {
				out[ch][i] = v
			}
		}
		t.phase = math.Mod(t.phase+step, 2*math.Pi)
		t.swell = math.Mod(t.swell+swellStep, 2*math.Pi)
	}
}
