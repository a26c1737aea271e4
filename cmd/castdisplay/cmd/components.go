// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"
	"os"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/internal/config"
	"github.com/gogpu/remotedisplay/playback"
	"github.com/gogpu/remotedisplay/render"
	"github.com/gogpu/remotedisplay/surface"
)

// rendererFactory builds cube renderers from the renderer section.
// The font file is read once.
func rendererFactory(cfg config.RendererConfig) (render.Factory, error) {
	opts := []render.Option{
		render.WithTitle(cfg.Title),
		render.WithFontSize(cfg.FontSize),
		render.WithSpeed(cfg.Speed),
	}
	if cfg.Font != "" {
		data, err := os.ReadFile(cfg.Font)
		if err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}
		opts = append(opts, render.WithFont(data))
	}
	return func() render.Renderer { return render.NewCubeRenderer(opts...) }, nil
}

// player returns the session audio player and a function releasing it.
func player(cfg config.AudioConfig) (playback.Player, func() error) {
	if !cfg.Enabled {
		return playback.Nop{}, func() error { return nil }
	}
	if !playback.Available() {
		remotedisplay.Logger().Warn("audio enabled but this build has no audio output")
		return playback.Nop{}, func() error { return nil }
	}
	p := playback.NewTonePlayer(playback.NewTone(cfg.Frequency, cfg.SampleRate, cfg.Volume))
	return p, p.Close
}

// query opens the configured capability provider.
func query(cfg config.SurfaceConfig) (surface.CapabilityQuery, error) {
	q, err := surface.NewQueryByName(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("opening %s surface provider: %w", cfg.Backend, err)
	}
	return q, nil
}
