package provision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// ErrLocked reports that another easiarr process is mid-run.
var ErrLocked = errors.New("another provisioning run is already in progress")

// Runner executes a plan one step at a time.
type Runner struct {
	// Policy controls retries of failing applies.
	Policy Policy

	// Store persists outcomes between runs. Optional: without it every
	// run starts from scratch.
	Store *StateStore

	// LockPath serializes runs across processes when set.
	LockPath string

	// Events receives every step transition when set. The caller must
	// drain it until Run returns.
	Events chan<- Event

	Logger zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner returns a Runner with the default retry policy.
func NewRunner(store *StateStore, logger zerolog.Logger) *Runner {
	return &Runner{
		Policy: DefaultPolicy(),
		Store:  store,
		Logger: logger,
	}
}

// Run executes steps in dependency order and returns the outcome of each.
// Step failures land in the result, not the error: the error reports run
// infrastructure problems such as a bad plan, a held lock, or cancellation.
func (r *Runner) Run(ctx context.Context, steps []*Step) (Result, error) {
	ordered, err := order(steps)
	if err != nil {
		return Result{}, err
	}

	if r.LockPath != "" {
		lock := flock.New(r.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return Result{}, fmt.Errorf("acquiring run lock: %w", err)
		}
		if !locked {
			return Result{}, ErrLocked
		}
		defer lock.Unlock()
	}

	var result Result
	failed := map[string]bool{}

	for _, step := range ordered {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := r.runStep(ctx, step, failed)
		result.Steps = append(result.Steps, res)
		if res.Status == StatusFailed || res.Status == StatusBlocked {
			failed[step.ID] = true
		}
	}
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, step *Step, failed map[string]bool) StepResult {
	log := r.Logger.With().Str("step", step.ID).Logger()
	res := StepResult{ID: step.ID, App: step.App, Title: step.Title}

	for _, need := range step.Needs {
		if failed[need] {
			log.Warn().Str("needs", need).Msg("blocked by failed dependency")
			res.Status = StatusBlocked
			res.Err = fmt.Errorf("%s did not finish", need)
			r.record(step, res)
			r.emit(step, StatusBlocked, 0, res.Err)
			return res
		}
	}

	if r.Store != nil && r.Store.Done(step.ID) {
		log.Debug().Msg("completed in an earlier run")
		res.Status = StatusSkipped
		r.emit(step, StatusSkipped, 0, nil)
		return res
	}

	r.emit(step, StatusRunning, 1, nil)

	if step.Probe != nil {
		done, err := step.Probe(ctx)
		switch {
		case err != nil:
			// The apply will hit the same condition with a better
			// error, so just fall through to it.
			log.Debug().Err(err).Msg("probe failed")
		case done:
			log.Info().Msg("already in place")
			res.Status = StatusSkipped
			r.record(step, res)
			r.emit(step, StatusSkipped, 0, nil)
			return res
		}
	}

	attempts := r.Policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			r.emit(step, StatusRunning, attempt, nil)
		}
		res.Attempts = attempt

		lastErr = step.Apply(ctx)
		if lastErr == nil {
			log.Info().Int("attempts", attempt).Msg("done")
			res.Status = StatusDone
			r.record(step, res)
			r.emit(step, StatusDone, attempt, nil)
			return res
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("apply failed")
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			if err := r.wait(ctx, r.Policy.Delay(attempt)); err != nil {
				break
			}
		}
	}

	res.Status = StatusFailed
	res.Err = lastErr
	r.record(step, res)
	r.emit(step, StatusFailed, res.Attempts, lastErr)
	return res
}

func (r *Runner) record(step *Step, res StepResult) {
	if r.Store == nil {
		return
	}
	st := StepState{Status: res.Status, Attempts: res.Attempts}
	if res.Err != nil {
		st.Error = res.Err.Error()
	}
	if err := r.Store.Record(step.ID, st); err != nil {
		r.Logger.Error().Err(err).Str("step", step.ID).Msg("recording step outcome")
	}
}

func (r *Runner) emit(step *Step, status Status, attempt int, err error) {
	if r.Events == nil {
		return
	}
	r.Events <- Event{
		StepID:  step.ID,
		App:     step.App,
		Title:   step.Title,
		Status:  status,
		Attempt: attempt,
		Err:     err,
	}
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// order sorts steps so each comes after everything it needs, picking the
// lexicographically smallest ready ID at every position so plans execute in
// a stable order.
func order(steps []*Step) ([]*Step, error) {
	byID := make(map[string]*Step, len(steps))
	for _, s := range steps {
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step %q", s.ID)
		}
		byID[s.ID] = s
	}
	for _, s := range steps {
		for _, need := range s.Needs {
			if _, ok := byID[need]; !ok {
				return nil, fmt.Errorf("step %q needs unknown step %q", s.ID, need)
			}
		}
	}

	ids := make([]string, 0, len(steps))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	placed := make(map[string]bool, len(steps))
	ordered := make([]*Step, 0, len(steps))
	for len(ordered) < len(steps) {
		pick := ""
		for _, id := range ids {
			if placed[id] {
				continue
			}
			ready := true
			for _, need := range byID[id].Needs {
				if !placed[need] {
					ready = false
					break
				}
			}
			if ready {
				pick = id
				break
			}
		}
		if pick == "" {
			var stuck []string
			for _, id := range ids {
				if !placed[id] {
					stuck = append(stuck, id)
				}
			}
			return nil, fmt.Errorf("dependency cycle among steps: %s", strings.Join(stuck, ", "))
		}
		placed[pick] = true
		ordered = append(ordered, byID[pick])
	}
	return ordered, nil
}
