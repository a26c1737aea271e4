// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"context"
	"time"
)

// EndReason says why a session was torn down.
type EndReason string

// End reasons.
const (
	ReasonDetached       EndReason = "detached"
	ReasonReplaced       EndReason = "replaced"
	ReasonDisplayRemoved EndReason = "display-removed"
	ReasonSurfaceLost    EndReason = "surface-lost"
	ReasonShutdown       EndReason = "shutdown"
)

// Record describes one session for a Recorder.
type Record struct {
	ID          string
	DisplayID   string
	DisplayName string
	Width       int
	Height      int
	Config      string
	Started     time.Time

	// Set by SessionEnded only.
	Ended  time.Time
	Frames uint64
	Reason EndReason
}

// Recorder keeps a history of sessions. Errors are logged by the manager
// and never affect the session.
type Recorder interface {
	SessionStarted(ctx context.Context, r Record) error
	SessionEnded(ctx context.Context, r Record) error
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted(context.Context, Record) error { return nil }
func (nopRecorder) SessionEnded(context.Context, Record) error   { return nil }
