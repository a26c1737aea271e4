// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"context"
	"errors"

	"github.com/gogpu/remotedisplay"
)

// errNilQuery is wrapped in a QueryError when Select gets no query.
var errNilQuery = errors.New("nil capability query")

// Select chooses the configuration for req from what q reports.
//
// Multisampling is a soft requirement: when the multisampled query returns
// nothing, the query is repeated without it. Colour widths are a hard
// requirement checked on the returned list, first match wins. Select keeps
// no reference to the candidates other than the one it returns.
func Select(ctx context.Context, req Request, q CapabilityQuery) (Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plain := Criteria(req)
	plain.SampleBuffers = 0
	plain.Samples = 0

	passes := []Criteria{plain}
	if req.Multisampled() {
		ms := Criteria(req)
		ms.SampleBuffers = 1
		passes = []Criteria{ms, plain}
	}

	log := remotedisplay.Logger()

	var found []Candidate
	for i, crit := range passes {
		pass := i + 1
		if q == nil {
			return nil, &QueryError{Pass: pass, Criteria: crit, Err: errNilQuery}
		}
		if err := ctx.Err(); err != nil {
			return nil, &QueryError{Pass: pass, Criteria: crit, Err: err}
		}

		cands, err := q.QueryConfigs(ctx, crit)
		if err != nil {
			return nil, &QueryError{Pass: pass, Criteria: crit, Err: err}
		}
		cands = dropNil(cands)
		log.Debug("surface: capability query", "pass", pass, "criteria", crit.String(), "matches", len(cands))
		if len(cands) > 0 {
			found = cands
			break
		}
	}

	if len(found) == 0 {
		return nil, ErrNoMatchingConfiguration
	}

	for _, c := range found {
		if req.conforms(c) {
			log.Debug("surface: configuration selected", "config", Describe(c))
			return c, nil
		}
	}
	return nil, ErrNoExactColorMatch
}

// dropNil removes nil entries, copying only when there are any.
func dropNil(cands []Candidate) []Candidate {
	for i, c := range cands {
		if !isNil(c) {
			continue
		}
		out := append([]Candidate(nil), cands[:i]...)
		for _, c := range cands[i+1:] {
			if !isNil(c) {
				out = append(out, c)
			}
		}
		return out
	}
	return cands
}
