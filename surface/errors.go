// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
)

// Selection errors.
var (
	// ErrQueryFailed is matched by errors returned when the capability query
	// itself failed. It is never used for an empty result.
	ErrQueryFailed = errors.New("surface: capability query failed")

	// ErrNoMatchingConfiguration is returned when neither the multisampled
	// nor the plain query produced any candidate.
	ErrNoMatchingConfiguration = errors.New("surface: no matching configuration")

	// ErrNoExactColorMatch is returned when candidates existed but none had
	// exactly the requested colour channel widths.
	ErrNoExactColorMatch = errors.New("surface: no configuration with exact color match")

	// ErrInvalidRequest is returned for requests outside the supported ranges.
	ErrInvalidRequest = errors.New("surface: invalid configuration request")
)

// Surface errors.
var (
	// ErrSurfaceLost is returned by Present once the surface can no longer
	// reach its display. Lost surfaces are never retried.
	ErrSurfaceLost = errors.New("surface: surface lost")
)

// QueryError reports a failed capability query.
type QueryError struct {
	// Pass is 1 for the first query, 2 for the fallback without
	// multisampling.
	Pass     int
	Criteria Criteria
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("surface: capability query failed (pass %d, %s): %v", e.Pass, e.Criteria, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrQueryFailed) hold for every QueryError.
func (e *QueryError) Is(target error) bool { return target == ErrQueryFailed }
