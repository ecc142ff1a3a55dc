// Package provision drives first-run configuration of the enabled apps.
//
// A provisioning run is a fixed list of steps with dependency edges, not a
// general workflow engine. Every step knows how to probe whether its work is
// already in place and how to apply it. The runner orders steps by their
// needs, probes, retries failing applies with backoff, and records each
// outcome so the next run picks up where the last one stopped instead of
// redoing finished work.
package provision

import (
	"context"
	"math/rand/v2"
	"time"
)

// Status is the lifecycle of one step within a run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"

	// StatusBlocked marks a step that never ran because a step it needs
	// failed.
	StatusBlocked Status = "blocked"
)

// Step is one unit of provisioning work.
type Step struct {
	// ID is unique within a plan and stable across runs: outcomes are
	// persisted under it.
	ID string

	// App is the registry ID the step belongs to, empty for stack-level
	// work.
	App string

	// Title is the operator-facing description, e.g. "Configure Radarr".
	Title string

	// Needs lists step IDs that must have finished first.
	Needs []string

	// Probe reports whether the step's work is already in place, in which
	// case Apply is skipped. A nil Probe means always apply.
	Probe func(ctx context.Context) (bool, error)

	// Apply performs the work. It must tolerate being called again after
	// a partial failure.
	Apply func(ctx context.Context) error
}

// Event is one step transition, streamed to the progress UI.
type Event struct {
	StepID  string
	App     string
	Title   string
	Status  Status
	Attempt int
	Err     error
}

// Policy controls retries of a failing Apply. The zero value means a single
// attempt with no waiting.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy retries enough to ride out a container that is still booting.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  4,
		BaseDelay: 2 * time.Second,
		MaxDelay:  20 * time.Second,
	}
}

// Delay returns how long to wait after the given failed attempt, exponential
// in the attempt number with up to 25% jitter either way. Attempts count
// from 1.
func (p Policy) Delay(attempt int) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 16 {
		shift = 16
	}

	d := p.BaseDelay << shift
	if d <= 0 {
		d = p.MaxDelay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}

	quarter := d / 4
	return d - quarter + time.Duration(rand.Int64N(int64(2*quarter)+1))
}

// StepResult is one step's outcome within a finished run.
type StepResult struct {
	ID       string
	App      string
	Title    string
	Status   Status
	Attempts int
	Err      error
}

// Result is the outcome of a whole run, in execution order.
type Result struct {
	Steps []StepResult
}

// Ok reports whether every step ended done or skipped.
func (r Result) Ok() bool {
	for _, s := range r.Steps {
		if s.Status == StatusFailed || s.Status == StatusBlocked {
			return false
		}
	}
	return true
}

// Failed returns the steps that failed outright, not the ones blocked by
// them.
func (r Result) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			out = append(out, s)
		}
	}
	return out
}
