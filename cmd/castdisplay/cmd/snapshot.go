// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/display"
	"github.com/gogpu/remotedisplay/render"
	"github.com/gogpu/remotedisplay/surface"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render frames offscreen and save the last one as PNG",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().Int("width", 800, "image width")
	snapshotCmd.Flags().Int("height", 600, "image height")
	snapshotCmd.Flags().Int("frames", 30, "frames to render before saving")
	snapshotCmd.Flags().String("output", "snapshot.png", "output file")
	rootCmd.AddCommand(snapshotCmd)
}

// imageSink keeps a copy of the last presented frame.
type imageSink struct {
	last *image.RGBA
}

func (s *imageSink) Present(frame *image.RGBA) error {
	if s.last == nil {
		s.last = image.NewRGBA(frame.Rect)
	}
	copy(s.last.Pix, frame.Pix)
	return nil
}

func (s *imageSink) Connected() bool { return true }

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	frames, _ := cmd.Flags().GetInt("frames")
	output, _ := cmd.Flags().GetString("output")

	factory, err := rendererFactory(cfg.Renderer)
	if err != nil {
		return err
	}
	img, err := snapshot(cmd.Context(), cfg.Profile.Request(), factory, width, height, frames)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	remotedisplay.Logger().Info("snapshot saved", "output", output, "size", fmt.Sprintf("%dx%d", width, height))
	return nil
}

// snapshot renders frames on the software provider and returns the last.
func snapshot(ctx context.Context, req surface.Request, factory render.Factory, width, height, frames int) (*image.RGBA, error) {
	if frames < 1 {
		frames = 1
	}
	sink := &imageSink{}
	d := display.Display{ID: "snapshot", Name: "offscreen", Width: width, Height: height, Sink: sink}

	c, err := surface.Select(ctx, req, surface.SoftwareConfigs())
	if err != nil {
		return nil, err
	}
	s, err := surface.Open(d, c)
	if err != nil {
		return nil, err
	}
	defer s.Release()

	r := factory()
	if err := r.Initialize(s, c); err != nil {
		r.ReleaseResources()
		return nil, err
	}
	defer r.ReleaseResources()

	for range frames {
		if err := r.RenderFrame(); err != nil {
			return nil, err
		}
		if err := s.Present(); err != nil {
			return nil, err
		}
	}
	return sink.last, nil
}
