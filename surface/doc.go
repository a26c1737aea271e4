// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface negotiates framebuffer configurations and provides the
// render surface bound to a remote display.
//
// # Configuration selection
//
// [Select] picks one [Candidate] from the configurations a graphics
// subsystem reports through a [CapabilityQuery]:
//
//  1. Query with the requested colour, depth and stencil sizes plus
//     multisampling, if the [Request] asks for it.
//  2. If nothing matched, query again without multisampling. Nothing again
//     fails with [ErrNoMatchingConfiguration].
//  3. Walk the returned candidates in subsystem order and take the first
//     one whose colour channel widths equal the request exactly and whose
//     depth and stencil sizes are at least the requested ones. None fails
//     with [ErrNoExactColorMatch].
//
// Subsystems are free to return a superset in step 1 and 2; the exact colour
// filter in step 3 is authoritative. A failing query is reported as
// [ErrQueryFailed] and is never read as an empty result.
//
// # Providers
//
// Graphics subsystems register themselves in a [Registry]. Two are built in:
// "wgpu" (priority 100) enumerates GPU adapters through gogpu/wgpu/hal and
// "software" (priority 10) reports a fixed CPU configuration list.
//
//	q, err := surface.NewQuery()            // best available provider
//	cfg, err := surface.Select(ctx, req, q)
//
// # Surface
//
// [Open] binds a selected configuration to a display. The returned [Surface]
// owns the back buffer a renderer draws into; [Surface.Present] hands it to
// the display sink. A surface that failed to present is lost for good.
package surface
