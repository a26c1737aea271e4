// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// softwareAdapter describes the CPU renderer to surface consumers.
var softwareAdapter = gpucontext.AdapterInfo{
	Name: "Software Renderer",
	Type: gpucontext.AdapterTypeSoftware,
}

// SoftwareConfigs returns the configurations the CPU renderer supports,
// in the order it reports them. Multisampling is done by supersampling.
func SoftwareConfigs() ConfigList {
	rgba := gputypes.TextureFormatRGBA8Unorm
	none := gputypes.TextureFormatUndefined
	list := ConfigList{
		{Format: none, RedBits: 5, GreenBits: 6, BlueBits: 5, DepthBits: 16},
		{Format: none, RedBits: 8, GreenBits: 8, BlueBits: 8, DepthBits: 16},
		{Format: rgba, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8},
		{Format: rgba, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 16},
		{Format: rgba, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 24, StencilBits: 8},
		{Format: rgba, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 16, SampleBuffers: 1, Samples: 4},
		{Format: rgba, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 24, StencilBits: 8, SampleBuffers: 1, Samples: 4},
		{Format: none, RedBits: 10, GreenBits: 10, BlueBits: 10, AlphaBits: 2, DepthBits: 24, StencilBits: 8},
		{Format: none, RedBits: 16, GreenBits: 16, BlueBits: 16, AlphaBits: 16, DepthBits: 24},
	}
	for i := range list {
		list[i].ID = i + 1
		list[i].Source = SoftwareName
		list[i].Adapter = softwareAdapter
	}
	return list
}

func init() {
	Register(SoftwareName, 10, func() (CapabilityQuery, error) {
		return SoftwareConfigs(), nil
	}, nil)
}
