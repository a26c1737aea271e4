// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "context"

// CapabilityQuery asks a graphics subsystem for configurations matching
// criteria. An empty result with a nil error means nothing matched; a
// non-nil error means the subsystem could not answer.
//
// Implementations may return a superset of the exact match. The returned
// slice is only read for the duration of one Select call.
type CapabilityQuery interface {
	QueryConfigs(ctx context.Context, c Criteria) ([]Candidate, error)
}

// QueryFunc adapts a function to CapabilityQuery.
type QueryFunc func(ctx context.Context, c Criteria) ([]Candidate, error)

// QueryConfigs implements CapabilityQuery. A nil QueryFunc fails.
func (f QueryFunc) QueryConfigs(ctx context.Context, c Criteria) ([]Candidate, error) {
	if f == nil {
		return nil, errNilQuery
	}
	return f(ctx, c)
}

// ConfigList is a fixed configuration table. It matches leniently, the way
// EGL does: every size in the criteria is a minimum, colour included.
type ConfigList []Config

// QueryConfigs implements CapabilityQuery. Order is preserved.
func (l ConfigList) QueryConfigs(ctx context.Context, c Criteria) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Candidate
	for _, cfg := range l {
		if matchesAtLeast(cfg, c) {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func matchesAtLeast(cfg Config, c Criteria) bool {
	return cfg.RedBits >= c.RedBits &&
		cfg.GreenBits >= c.GreenBits &&
		cfg.BlueBits >= c.BlueBits &&
		cfg.AlphaBits >= c.AlphaBits &&
		cfg.DepthBits >= c.DepthBits &&
		cfg.StencilBits >= c.StencilBits &&
		cfg.SampleBuffers >= c.SampleBuffers &&
		cfg.Samples >= c.Samples
}
