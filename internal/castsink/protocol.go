// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package castsink

import (
	"fmt"

	"github.com/gogpu/remotedisplay/surface"
)

// Message types.
const (
	TypeHello   = "hello"
	TypeWelcome = "welcome"
)

// maxDimension bounds announced display sizes.
const maxDimension = 8192

// Hello is the first message a receiver sends after connecting.
type Hello struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Refresh float64         `json:"refresh,omitempty"`
	Configs []ConfigMessage `json:"configs,omitempty"`
}

// ConfigMessage is a framebuffer configuration a receiver can display.
type ConfigMessage struct {
	Red     uint `json:"red"`
	Green   uint `json:"green"`
	Blue    uint `json:"blue"`
	Alpha   uint `json:"alpha"`
	Depth   uint `json:"depth"`
	Stencil uint `json:"stencil"`
	Samples uint `json:"samples,omitempty"`
}

// Welcome acknowledges a Hello. Frames follow as binary JPEG messages.
type Welcome struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (h *Hello) validate() error {
	if h.Type != TypeHello {
		return fmt.Errorf("castsink: expected %q message, got %q", TypeHello, h.Type)
	}
	if h.Width <= 0 || h.Height <= 0 || h.Width > maxDimension || h.Height > maxDimension {
		return fmt.Errorf("castsink: invalid display size %dx%d", h.Width, h.Height)
	}
	if h.Refresh < 0 {
		return fmt.Errorf("castsink: invalid refresh rate %v", h.Refresh)
	}
	return nil
}

// configList converts advertised configurations for the selector.
func (h *Hello) configList(source string) surface.ConfigList {
	out := make(surface.ConfigList, 0, len(h.Configs))
	for i, c := range h.Configs {
		cfg := surface.Config{
			ID:          i + 1,
			Source:      source,
			RedBits:     c.Red,
			GreenBits:   c.Green,
			BlueBits:    c.Blue,
			AlphaBits:   c.Alpha,
			DepthBits:   c.Depth,
			StencilBits: c.Stencil,
		}
		if c.Samples > 1 {
			cfg.SampleBuffers = 1
			cfg.Samples = c.Samples
		}
		out = append(out, cfg)
	}
	return out
}
