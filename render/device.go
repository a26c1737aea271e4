// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle is the device side of a render target. *surface.Surface
// implements it.
type DeviceHandle = gpucontext.DeviceProvider

// maxSoftwareSupersample caps the per-axis supersampling factor on
// software adapters.
const maxSoftwareSupersample = 2

// Path describes how a renderer draws onto a device.
type Path struct {
	// Adapter is the device the target's configuration came from.
	Adapter gpucontext.AdapterInfo

	// Format is the colour format frames are composed in.
	Format gputypes.TextureFormat

	// Supersample is the per-axis supersampling factor, 1 for none.
	Supersample int
}

// ChoosePath picks the drawing path for a target with the given sample
// count. Only 8-bit-per-channel colour formats are drawable; an undefined
// format means the caller has already checked channel widths.
func ChoosePath(d DeviceHandle, samples uint) (Path, error) {
	if d == nil {
		return Path{}, fmt.Errorf("%w: nil device", ErrUnsupportedConfig)
	}

	p := Path{
		Adapter:     d.AdapterInfo(),
		Format:      d.SurfaceFormat(),
		Supersample: supersampleScale(samples),
	}
	switch p.Format {
	case gputypes.TextureFormatUndefined,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
	default:
		return Path{}, fmt.Errorf("%w: surface format %v", ErrUnsupportedConfig, p.Format)
	}

	if p.Adapter.Type == gpucontext.AdapterTypeSoftware && p.Supersample > maxSoftwareSupersample {
		p.Supersample = maxSoftwareSupersample
	}
	return p, nil
}
