// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"context"
	"errors"
	"testing"
)

// defaultRequest is the 8-8-8-8, depth 16, no stencil, 4x MSAA profile.
var defaultRequest = Request{
	RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8,
	DepthBits: 16, SampleBuffers: 1, Samples: 4,
}

// recordingQuery wraps a ConfigList and records the criteria it was asked.
type recordingQuery struct {
	list  ConfigList
	calls []Criteria
	err   error
}

func (q *recordingQuery) QueryConfigs(ctx context.Context, c Criteria) ([]Candidate, error) {
	q.calls = append(q.calls, c)
	if q.err != nil {
		return nil, q.err
	}
	return q.list.QueryConfigs(ctx, c)
}

func rgba8(depth, stencil, samples uint) Config {
	c := Config{RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: depth, StencilBits: stencil}
	if samples > 1 {
		c.SampleBuffers = 1
		c.Samples = samples
	}
	return c
}

// TestSelectFallbackWithoutMultisample is the single-candidate example:
// only a non-multisampled 8-8-8-8/16/0 config exists.
func TestSelectFallbackWithoutMultisample(t *testing.T) {
	only := rgba8(16, 0, 0)
	only.ID = 7
	q := &recordingQuery{list: ConfigList{only}}

	got, err := Select(context.Background(), defaultRequest, q)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if cfg, ok := got.(Config); !ok || cfg.ID != 7 {
		t.Errorf("Select() = %v, want config #7", got)
	}
	if len(q.calls) != 2 {
		t.Fatalf("queries = %d, want 2", len(q.calls))
	}
	if q.calls[0].SampleBuffers != 1 || q.calls[0].Samples != 4 {
		t.Errorf("pass 1 criteria = %+v, want multisample 4", q.calls[0])
	}
	if q.calls[1].SampleBuffers != 0 || q.calls[1].Samples != 0 {
		t.Errorf("pass 2 criteria = %+v, want no multisample", q.calls[1])
	}
}

func TestSelectPrefersMultisample(t *testing.T) {
	plain := rgba8(16, 0, 0)
	plain.ID = 1
	ms := rgba8(16, 0, 4)
	ms.ID = 2
	q := &recordingQuery{list: ConfigList{plain, ms}}

	got, err := Select(context.Background(), defaultRequest, q)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.(Config).ID != 2 {
		t.Errorf("Select() = %v, want multisampled config", got)
	}
	if len(q.calls) != 1 {
		t.Errorf("queries = %d, want 1", len(q.calls))
	}
}

func TestSelectNoMultisampleRequest(t *testing.T) {
	req := defaultRequest
	req.SampleBuffers = 0
	req.Samples = 0
	q := &recordingQuery{list: ConfigList{rgba8(16, 0, 0)}}

	if _, err := Select(context.Background(), req, q); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(q.calls) != 1 || q.calls[0].SampleBuffers != 0 {
		t.Errorf("calls = %+v, want a single plain query", q.calls)
	}
}

func TestSelectNoMatchingConfiguration(t *testing.T) {
	tests := []struct {
		name string
		list ConfigList
	}{
		{"empty", nil},
		{"depth too small", ConfigList{rgba8(8, 0, 4), rgba8(0, 0, 0)}},
		{"stencil missing", ConfigList{rgba8(24, 0, 0)}},
	}
	req := defaultRequest
	req.StencilBits = 8
	req.DepthBits = 16
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQuery{list: tt.list}
			_, err := Select(context.Background(), req, q)
			if !errors.Is(err, ErrNoMatchingConfiguration) {
				t.Errorf("Select() error = %v, want ErrNoMatchingConfiguration", err)
			}
			if len(q.calls) != 2 {
				t.Errorf("queries = %d, want 2", len(q.calls))
			}
		})
	}
}

func TestSelectNoExactColorMatch(t *testing.T) {
	// The lenient list returns 10-10-10-2 and 16-bit configs for an 8-bit
	// request; none matches the colour widths exactly.
	wide := Config{RedBits: 10, GreenBits: 10, BlueBits: 10, AlphaBits: 2, DepthBits: 24}
	deep := Config{RedBits: 16, GreenBits: 16, BlueBits: 16, AlphaBits: 16, DepthBits: 16}
	q := &recordingQuery{list: ConfigList{wide, deep}}

	req := Request{RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 2, DepthBits: 16}
	_, err := Select(context.Background(), req, q)
	if !errors.Is(err, ErrNoExactColorMatch) {
		t.Errorf("Select() error = %v, want ErrNoExactColorMatch", err)
	}
}

func TestSelectExactColorRefilter(t *testing.T) {
	// Superset query result: the first entries match sizes as minimums only.
	list := ConfigList{
		{ID: 1, RedBits: 10, GreenBits: 10, BlueBits: 10, AlphaBits: 8, DepthBits: 24},
		{ID: 2, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 8},
		{ID: 3, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 24, StencilBits: 8},
		{ID: 4, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, DepthBits: 16},
	}
	query := QueryFunc(func(context.Context, Criteria) ([]Candidate, error) {
		out := make([]Candidate, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, nil
	})

	got, err := Select(context.Background(), defaultRequest, query)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.(Config).ID != 3 {
		t.Errorf("Select() = %v, want first conforming config #3", got)
	}
}

func TestSelectQueryFailed(t *testing.T) {
	boom := errors.New("eglChooseConfig failed")

	t.Run("first pass", func(t *testing.T) {
		q := &recordingQuery{err: boom}
		_, err := Select(context.Background(), defaultRequest, q)
		if !errors.Is(err, ErrQueryFailed) {
			t.Fatalf("Select() error = %v, want ErrQueryFailed", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("Select() error = %v, should wrap the subsystem error", err)
		}
		if errors.Is(err, ErrNoMatchingConfiguration) {
			t.Error("a failed query must not read as zero results")
		}
		if len(q.calls) != 1 {
			t.Errorf("queries = %d, want 1 (no fallback after failure)", len(q.calls))
		}
		var qe *QueryError
		if !errors.As(err, &qe) || qe.Pass != 1 {
			t.Errorf("QueryError = %+v, want pass 1", qe)
		}
	})

	t.Run("second pass", func(t *testing.T) {
		calls := 0
		q := QueryFunc(func(context.Context, Criteria) ([]Candidate, error) {
			calls++
			if calls == 1 {
				return nil, nil
			}
			return nil, boom
		})
		_, err := Select(context.Background(), defaultRequest, q)
		var qe *QueryError
		if !errors.As(err, &qe) || qe.Pass != 2 {
			t.Fatalf("Select() error = %v, want QueryError on pass 2", err)
		}
	})

	t.Run("nil query", func(t *testing.T) {
		_, err := Select(context.Background(), defaultRequest, nil)
		if !errors.Is(err, ErrQueryFailed) {
			t.Errorf("Select(nil) error = %v, want ErrQueryFailed", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Select(ctx, defaultRequest, &recordingQuery{list: ConfigList{rgba8(16, 0, 0)}})
		if !errors.Is(err, ErrQueryFailed) || !errors.Is(err, context.Canceled) {
			t.Errorf("Select() error = %v, want ErrQueryFailed wrapping context.Canceled", err)
		}
	})
}

func TestSelectNilCandidates(t *testing.T) {
	var missing *Config

	t.Run("skipped in results", func(t *testing.T) {
		q := QueryFunc(func(context.Context, Criteria) ([]Candidate, error) {
			return []Candidate{nil, missing, rgba8(16, 0, 4)}, nil
		})
		got, err := Select(context.Background(), defaultRequest, q)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if SampleCount(got) != 4 {
			t.Errorf("Select() = %s, want the multisampled config", Describe(got))
		}
	})

	t.Run("only nils fall back", func(t *testing.T) {
		calls := 0
		q := QueryFunc(func(_ context.Context, c Criteria) ([]Candidate, error) {
			calls++
			if c.SampleBuffers == 1 {
				return []Candidate{nil}, nil
			}
			return []Candidate{rgba8(16, 0, 0)}, nil
		})
		got, err := Select(context.Background(), defaultRequest, q)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if calls != 2 || SampleCount(got) != 1 {
			t.Errorf("calls = %d, got %s; want pass 2 result", calls, Describe(got))
		}
	})

	t.Run("nil query func", func(t *testing.T) {
		var q QueryFunc
		_, err := Select(context.Background(), defaultRequest, q)
		if !errors.Is(err, ErrQueryFailed) {
			t.Errorf("Select() error = %v, want ErrQueryFailed", err)
		}
	})
}

func TestSelectInvalidRequest(t *testing.T) {
	tests := []Request{
		{RedBits: 17},
		{AlphaBits: 32},
		{SampleBuffers: 2},
	}
	for _, req := range tests {
		if _, err := Select(context.Background(), req, SoftwareConfigs()); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Select(%+v) error = %v, want ErrInvalidRequest", req, err)
		}
	}
}

// TestSelectConforms checks, over a grid of requests against the software
// table, that any returned candidate conforms. For single-pass requests the
// query result contains every conforming config, so one existing must lead
// to success.
func TestSelectConforms(t *testing.T) {
	list := SoftwareConfigs()
	for _, colour := range [][4]uint{{8, 8, 8, 8}, {8, 8, 8, 0}, {5, 6, 5, 0}, {10, 10, 10, 2}} {
		for _, depth := range []uint{0, 16, 24, 32} {
			for _, stencil := range []uint{0, 8} {
				for _, samples := range []uint{0, 4} {
					req := Request{
						RedBits: colour[0], GreenBits: colour[1], BlueBits: colour[2], AlphaBits: colour[3],
						DepthBits: depth, StencilBits: stencil,
					}
					if samples > 0 {
						req.SampleBuffers = 1
						req.Samples = samples
					}

					exists := false
					for _, c := range list {
						if req.conforms(c) {
							exists = true
							break
						}
					}

					got, err := Select(context.Background(), req, list)
					if err == nil && !req.conforms(got) {
						t.Errorf("Select(%s) = %s, does not conform", req, Describe(got))
					}
					if samples == 0 && exists && err != nil {
						t.Errorf("Select(%s) error = %v, but a conforming candidate exists", req, err)
					}
				}
			}
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	list := SoftwareConfigs()
	first, err := Select(context.Background(), defaultRequest, list)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Select(context.Background(), defaultRequest, list)
		if err != nil || got != first {
			t.Fatalf("Select() run %d = %v, %v; want %v", i, got, err, first)
		}
	}
}

// sparseCandidate knows only colour attributes, like a driver that fails
// the depth/stencil attribute lookup.
type sparseCandidate struct{}

func (sparseCandidate) Attrib(a Attribute) (uint, bool) {
	switch a {
	case AttribRed, AttribGreen, AttribBlue, AttribAlpha:
		return 8, true
	}
	return 0, false
}

func TestSelectMissingAttributesReadAsZero(t *testing.T) {
	q := QueryFunc(func(context.Context, Criteria) ([]Candidate, error) {
		return []Candidate{sparseCandidate{}}, nil
	})

	req := Request{RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8}
	if _, err := Select(context.Background(), req, q); err != nil {
		t.Errorf("Select() without depth = %v, want success", err)
	}

	req.DepthBits = 16
	if _, err := Select(context.Background(), req, q); !errors.Is(err, ErrNoExactColorMatch) {
		t.Errorf("Select() with depth = %v, want ErrNoExactColorMatch", err)
	}
}
