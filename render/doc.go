// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the renderer contract used by remote display
// sessions and ships the cube renderer.
//
// A session owns one [Renderer] for its whole active period:
//
//	r := render.NewCubeRenderer(render.WithTitle("living room"))
//	if err := r.Initialize(surf, cfg); err != nil {
//	    return err
//	}
//	defer r.ReleaseResources()
//
//	for range ticker.C {
//	    if err := r.RenderFrame(); err != nil {
//	        log.Printf("frame failed: %v", err)
//	    }
//	    surf.Present()
//	}
//
// RenderFrame only draws into the surface back buffer; presenting is the
// caller's job so a lost surface is handled in one place.
package render
