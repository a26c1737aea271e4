// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "image/color"

// Option configures a CubeRenderer during creation.
//
// Example:
//
//	r := render.NewCubeRenderer(
//	    render.WithTitle("kitchen tv"),
//	    render.WithFontSize(40),
//	)
type Option func(*options)

type options struct {
	title      string
	fontData   []byte
	fontSize   float64
	background color.RGBA
	palette    []color.RGBA
	speed      float64
}

// DefaultPalette is the colour cycle used by ChangeColor.
var DefaultPalette = []color.RGBA{
	{R: 0x3d, G: 0xdc, B: 0x84, A: 0xff},
	{R: 0x42, G: 0x85, B: 0xf4, A: 0xff},
	{R: 0xea, G: 0x43, B: 0x35, A: 0xff},
	{R: 0xfb, G: 0xbc, B: 0x05, A: 0xff},
}

func defaultOptions() options {
	return options{
		fontSize:   32,
		background: color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff},
		palette:    DefaultPalette,
		speed:      0.02,
	}
}

// WithTitle sets the overlay text drawn above the cube. Empty disables it.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithFont sets TrueType/OpenType font data for the title.
// Go Regular is used when unset.
func WithFont(data []byte) Option {
	return func(o *options) {
		o.fontData = data
	}
}

// WithFontSize sets the title size in points.
func WithFontSize(points float64) Option {
	return func(o *options) {
		if points > 0 {
			o.fontSize = points
		}
	}
}

// WithBackground sets the clear colour.
func WithBackground(c color.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithPalette sets the colours ChangeColor cycles through.
func WithPalette(p []color.RGBA) Option {
	return func(o *options) {
		if len(p) > 0 {
			o.palette = p
		}
	}
}

// WithSpeed sets the rotation per frame in radians.
func WithSpeed(rad float64) Option {
	return func(o *options) {
		o.speed = rad
	}
}
