// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync/atomic"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/surface"
)

type vec3 struct{ x, y, z float64 }

func (a vec3) sub(b vec3) vec3 { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }

func (a vec3) cross(b vec3) vec3 {
	return vec3{a.y*b.z - a.z*b.y, a.z*b.x - a.x*b.z, a.x*b.y - a.y*b.x}
}

func (a vec3) dot(b vec3) float64 { return a.x*b.x + a.y*b.y + a.z*b.z }

func (a vec3) normalize() vec3 {
	l := math.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return vec3{a.x / l, a.y / l, a.z / l}
}

var cubeVertices = [8]vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// cubeFaces are wound so the cross product of the first two edges points
// outwards.
var cubeFaces = [6][4]int{
	{0, 3, 2, 1}, // back
	{4, 5, 6, 7}, // front
	{0, 1, 5, 4}, // bottom
	{3, 7, 6, 2}, // top
	{0, 4, 7, 3}, // left
	{1, 2, 6, 5}, // right
}

// cameraDistance is the z offset of the cube centre from the eye.
const cameraDistance = 4.0

// CubeRenderer draws a rotating shaded cube with an optional title.
// Multisampled configurations are honoured by supersampling.
type CubeRenderer struct {
	opts options

	surf    *surface.Surface
	path    Path
	scale   int
	scratch *image.RGBA
	raster  *vector.Rasterizer
	face    font.Face
	title   string

	angle  float64
	frames atomic.Uint64
	color  atomic.Uint32
}

// NewCubeRenderer creates a cube renderer. Call Initialize before use.
func NewCubeRenderer(opts ...Option) *CubeRenderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &CubeRenderer{opts: o}
}

// Initialize implements Renderer.
func (r *CubeRenderer) Initialize(s *surface.Surface, c surface.Candidate) error {
	if s == nil || c == nil {
		return fmt.Errorf("%w: nil surface or configuration", ErrUnsupportedConfig)
	}
	for _, a := range []surface.Attribute{surface.AttribRed, surface.AttribGreen, surface.AttribBlue} {
		if v, _ := c.Attrib(a); v != 8 {
			return fmt.Errorf("%w: %s channel of %d bits", ErrUnsupportedConfig, a, v)
		}
	}

	path, err := ChoosePath(s, surface.SampleCount(c))
	if err != nil {
		return err
	}
	r.path = path
	r.scale = path.Supersample
	w, h := s.Width()*r.scale, s.Height()*r.scale
	if r.scale > 1 {
		r.scratch = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	r.raster = vector.NewRasterizer(w, h)
	r.raster.DrawOp = draw.Over

	if r.opts.title != "" {
		face, err := loadFace(r.opts.fontData, r.opts.fontSize)
		if err != nil {
			return err
		}
		r.face = face
		r.title = cases.Title(language.English).String(r.opts.title)
	}

	r.surf = s
	remotedisplay.Logger().Debug("render: cube initialized",
		"size", fmt.Sprintf("%dx%d", s.Width(), s.Height()),
		"supersample", r.scale,
		"format", path.Format,
		"adapter", path.Adapter.Name,
		"adapter_type", path.Adapter.Type.String())
	return nil
}

// supersampleScale maps a sample count to a per-axis supersampling factor.
func supersampleScale(samples uint) int {
	scale := int(math.Round(math.Sqrt(float64(samples))))
	if scale < 1 {
		return 1
	}
	return scale
}

func loadFace(data []byte, size float64) (font.Face, error) {
	if data == nil {
		data = goregular.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("render: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create face: %w", err)
	}
	return face, nil
}

// RenderFrame implements Renderer.
func (r *CubeRenderer) RenderFrame() error {
	if r.surf == nil {
		return ErrNotInitialized
	}

	dst := r.surf.BackBuffer()
	target := dst
	if r.scratch != nil {
		target = r.scratch
	}

	draw.Draw(target, target.Bounds(), image.NewUniform(r.opts.background), image.Point{}, draw.Src)
	r.drawCube(target)

	if r.scratch != nil {
		draw.BiLinear.Scale(dst, dst.Bounds(), r.scratch, r.scratch.Bounds(), draw.Src, nil)
	}
	if r.face != nil {
		r.drawTitle(dst)
	}

	r.angle += r.opts.speed
	r.frames.Add(1)
	return nil
}

func (r *CubeRenderer) drawCube(dst *image.RGBA) {
	b := dst.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	focal := math.Min(cx, cy) * 2.2

	sinY, cosY := math.Sincos(r.angle)
	sinX, cosX := math.Sincos(r.angle * 0.7)

	var world [8]vec3
	var screen [8][2]float32
	for i, v := range cubeVertices {
		// Rotate about Y then X, then push away from the eye.
		x := v.x*cosY + v.z*sinY
		z := -v.x*sinY + v.z*cosY
		y := v.y*cosX - z*sinX
		z = v.y*sinX + z*cosX + cameraDistance
		world[i] = vec3{x, y, z}
		screen[i] = [2]float32{
			float32(cx + focal*x/z),
			float32(cy - focal*y/z),
		}
	}

	base := r.currentColor()
	for _, f := range cubeFaces {
		a, bb, c := world[f[0]], world[f[1]], world[f[2]]
		normal := bb.sub(a).cross(c.sub(a)).normalize()
		centre := vec3{
			(a.x + world[f[2]].x) / 2,
			(a.y + world[f[2]].y) / 2,
			(a.z + world[f[2]].z) / 2,
		}
		if normal.dot(centre) >= 0 {
			continue
		}

		r.raster.Reset(b.Dx(), b.Dy())
		r.raster.DrawOp = draw.Over
		r.raster.MoveTo(screen[f[0]][0], screen[f[0]][1])
		for _, idx := range f[1:] {
			r.raster.LineTo(screen[idx][0], screen[idx][1])
		}
		r.raster.ClosePath()
		r.raster.Draw(dst, b, image.NewUniform(shade(base, -normal.z)), image.Point{})
	}
}

// shade darkens c for faces turned away from a light behind the eye.
func shade(c color.RGBA, facing float64) color.RGBA {
	k := 0.35 + 0.65*math.Max(0, math.Min(1, facing))
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

func (r *CubeRenderer) drawTitle(dst *image.RGBA) {
	width := font.MeasureString(r.face, r.title).Ceil()
	ascent := r.face.Metrics().Ascent.Ceil()
	x := (dst.Bounds().Dx() - width) / 2
	y := ascent + ascent/2

	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(r.title)
}

func (r *CubeRenderer) currentColor() color.RGBA {
	p := r.opts.palette
	return p[int(r.color.Load())%len(p)]
}

// ChangeColor advances the cube colour. Safe for concurrent use.
func (r *CubeRenderer) ChangeColor() {
	r.color.Add(1)
}

// Frames returns the number of frames rendered since Initialize.
func (r *CubeRenderer) Frames() uint64 {
	return r.frames.Load()
}

// Path returns the drawing path chosen by Initialize.
func (r *CubeRenderer) Path() Path { return r.path }

// ReleaseResources implements Renderer.
func (r *CubeRenderer) ReleaseResources() {
	if r.face != nil {
		if err := r.face.Close(); err != nil {
			remotedisplay.Logger().Warn("render: font face close failed", "err", err)
		}
		r.face = nil
	}
	r.surf = nil
	r.path = Path{}
	r.scratch = nil
	r.raster = nil
}

var (
	_ Renderer     = (*CubeRenderer)(nil)
	_ ColorChanger = (*CubeRenderer)(nil)
)
