// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// MaxColorBits is the widest colour channel a Request may ask for.
const MaxColorBits = 16

// Attribute names a queryable property of a configuration candidate.
type Attribute uint8

const (
	AttribRed Attribute = iota + 1
	AttribGreen
	AttribBlue
	AttribAlpha
	AttribDepth
	AttribStencil
	AttribSampleBuffers
	AttribSamples
)

func (a Attribute) String() string {
	switch a {
	case AttribRed:
		return "red"
	case AttribGreen:
		return "green"
	case AttribBlue:
		return "blue"
	case AttribAlpha:
		return "alpha"
	case AttribDepth:
		return "depth"
	case AttribStencil:
		return "stencil"
	case AttribSampleBuffers:
		return "sample_buffers"
	case AttribSamples:
		return "samples"
	default:
		return fmt.Sprintf("Attribute(%d)", uint8(a))
	}
}

// Candidate is one framebuffer configuration offered by a graphics
// subsystem. The handle is owned by the subsystem; callers only read it.
type Candidate interface {
	// Attrib returns the value of a and whether the subsystem knows it.
	Attrib(a Attribute) (uint, bool)
}

// isNil reports whether c holds no candidate.
func isNil(c Candidate) bool {
	if c == nil {
		return true
	}
	cfg, ok := c.(*Config)
	return ok && cfg == nil
}

// attrib reads a, treating unknown attributes and nil candidates as zero.
func attrib(c Candidate, a Attribute) uint {
	if isNil(c) {
		return 0
	}
	v, ok := c.Attrib(a)
	if !ok {
		return 0
	}
	return v
}

// Request is the desired framebuffer profile.
type Request struct {
	RedBits   uint
	GreenBits uint
	BlueBits  uint
	AlphaBits uint

	DepthBits   uint
	StencilBits uint

	// SampleBuffers is 1 to ask for multisampling, 0 otherwise.
	SampleBuffers uint

	// Samples is the requested samples per pixel when SampleBuffers is 1.
	Samples uint
}

// Validate checks channel widths and the sample buffer flag.
func (r Request) Validate() error {
	for _, bits := range []uint{r.RedBits, r.GreenBits, r.BlueBits, r.AlphaBits} {
		if bits > MaxColorBits {
			return fmt.Errorf("%w: colour channel of %d bits", ErrInvalidRequest, bits)
		}
	}
	if r.SampleBuffers > 1 {
		return fmt.Errorf("%w: sample buffers %d", ErrInvalidRequest, r.SampleBuffers)
	}
	return nil
}

// Multisampled reports whether the request prefers anti-aliasing.
func (r Request) Multisampled() bool {
	return r.SampleBuffers == 1 && r.Samples > 0
}

// conforms reports whether c meets r: exact colour widths, depth and
// stencil at least as large as requested.
func (r Request) conforms(c Candidate) bool {
	return attrib(c, AttribDepth) >= r.DepthBits &&
		attrib(c, AttribStencil) >= r.StencilBits &&
		attrib(c, AttribRed) == r.RedBits &&
		attrib(c, AttribGreen) == r.GreenBits &&
		attrib(c, AttribBlue) == r.BlueBits &&
		attrib(c, AttribAlpha) == r.AlphaBits
}

func (r Request) String() string {
	s := fmt.Sprintf("%d-%d-%d-%d d%d s%d", r.RedBits, r.GreenBits, r.BlueBits, r.AlphaBits, r.DepthBits, r.StencilBits)
	if r.Multisampled() {
		s += fmt.Sprintf(" msaa%d", r.Samples)
	}
	return s
}

// Criteria is what a CapabilityQuery is asked to match. It carries the
// request sizes and the multisample demand of the current pass.
type Criteria Request

func (c Criteria) String() string { return Request(c).String() }

// Config is the concrete candidate reported by the built-in providers.
type Config struct {
	// ID is the provider's handle for the configuration.
	ID int

	// Source names the provider or adapter that offered the configuration.
	Source string

	// Format is the matching WebGPU colour format, or
	// gputypes.TextureFormatUndefined when there is none.
	Format gputypes.TextureFormat

	// Adapter describes the device that renders this configuration.
	// A zero value means unknown.
	Adapter gpucontext.AdapterInfo

	RedBits       uint
	GreenBits     uint
	BlueBits      uint
	AlphaBits     uint
	DepthBits     uint
	StencilBits   uint
	SampleBuffers uint
	Samples       uint
}

// Attrib implements Candidate.
func (c Config) Attrib(a Attribute) (uint, bool) {
	switch a {
	case AttribRed:
		return c.RedBits, true
	case AttribGreen:
		return c.GreenBits, true
	case AttribBlue:
		return c.BlueBits, true
	case AttribAlpha:
		return c.AlphaBits, true
	case AttribDepth:
		return c.DepthBits, true
	case AttribStencil:
		return c.StencilBits, true
	case AttribSampleBuffers:
		return c.SampleBuffers, true
	case AttribSamples:
		return c.Samples, true
	default:
		return 0, false
	}
}

func (c Config) String() string {
	s := fmt.Sprintf("%s#%d %d-%d-%d-%d d%d s%d", c.Source, c.ID,
		c.RedBits, c.GreenBits, c.BlueBits, c.AlphaBits, c.DepthBits, c.StencilBits)
	if c.SampleBuffers > 0 {
		s += fmt.Sprintf(" msaa%d", c.Samples)
	}
	return s
}

// Describe returns a printable form of any candidate.
func Describe(c Candidate) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%d-%d-%d-%d d%d s%d samples%d",
		attrib(c, AttribRed), attrib(c, AttribGreen), attrib(c, AttribBlue), attrib(c, AttribAlpha),
		attrib(c, AttribDepth), attrib(c, AttribStencil), attrib(c, AttribSamples))
}

// SampleCount returns the samples per pixel a candidate renders with,
// 1 when it is not multisampled.
func SampleCount(c Candidate) uint {
	if attrib(c, AttribSampleBuffers) == 0 || attrib(c, AttribSamples) < 2 {
		return 1
	}
	return attrib(c, AttribSamples)
}

// adapterReporter is implemented by candidates that know their device.
type adapterReporter interface {
	AdapterInfo() gpucontext.AdapterInfo
}

// AdapterOf returns the device a candidate renders on, with type
// gpucontext.AdapterTypeUnknown when the candidate does not say.
func AdapterOf(c Candidate) gpucontext.AdapterInfo {
	var info gpucontext.AdapterInfo
	switch cfg := c.(type) {
	case Config:
		info = cfg.Adapter
	case *Config:
		if cfg != nil {
			info = cfg.Adapter
		}
	case adapterReporter:
		return cfg.AdapterInfo()
	}
	if info.Name == "" {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	return info
}

// FormatOf returns the WebGPU colour format of a candidate.
func FormatOf(c Candidate) gputypes.TextureFormat {
	switch cfg := c.(type) {
	case Config:
		return cfg.Format
	case *Config:
		return cfg.Format
	}
	if attrib(c, AttribRed) == 8 && attrib(c, AttribGreen) == 8 &&
		attrib(c, AttribBlue) == 8 && attrib(c, AttribAlpha) == 8 {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatUndefined
}
