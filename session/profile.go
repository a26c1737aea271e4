// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import "github.com/gogpu/remotedisplay/surface"

// DefaultProfile is the framebuffer requested for every session:
// 8 bits per channel, 16-bit depth, no stencil, 4x multisampling preferred.
var DefaultProfile = surface.Request{
	RedBits:       8,
	GreenBits:     8,
	BlueBits:      8,
	AlphaBits:     8,
	DepthBits:     16,
	StencilBits:   0,
	SampleBuffers: 1,
	Samples:       4,
}
