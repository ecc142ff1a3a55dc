package provision

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func okStep(id string, rec *recorder, needs ...string) *Step {
	return &Step{
		ID:    id,
		Title: id,
		Needs: needs,
		Apply: func(ctx context.Context) error {
			rec.add(id)
			return nil
		},
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	store, err := NewStateStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	r := NewRunner(store, zerolog.Nop())
	r.Policy = Policy{Attempts: 1}
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return r
}

func TestRunOrdersByNeeds(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	steps := []*Step{
		okStep("c", rec, "b"),
		okStep("d", rec),
		okStep("b", rec, "a"),
		okStep("a", rec),
	}

	r := newTestRunner(t)
	result, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, rec.calls())
	assert.True(t, result.Ok())
}

func TestRunBreaksTiesByID(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	steps := []*Step{okStep("zebra", rec), okStep("aardvark", rec), okStep("mole", rec)}

	r := newTestRunner(t)
	_, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	assert.Equal(t, []string{"aardvark", "mole", "zebra"}, rec.calls())
}

func TestRunSkipsWhenProbeTrue(t *testing.T) {
	t.Parallel()

	applied := false
	step := &Step{
		ID:    "a",
		Title: "a",
		Probe: func(ctx context.Context) (bool, error) { return true, nil },
		Apply: func(ctx context.Context) error {
			applied = true
			return nil
		},
	}

	r := newTestRunner(t)
	result, err := r.Run(context.Background(), []*Step{step})
	require.NoError(t, err)

	assert.False(t, applied)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, StatusSkipped, result.Steps[0].Status)
	assert.True(t, r.Store.Done("a"))
}

func TestRunAppliesWhenProbeErrors(t *testing.T) {
	t.Parallel()

	applied := false
	step := &Step{
		ID:    "a",
		Title: "a",
		Probe: func(ctx context.Context) (bool, error) { return false, errors.New("not up yet") },
		Apply: func(ctx context.Context) error {
			applied = true
			return nil
		},
	}

	r := newTestRunner(t)
	result, err := r.Run(context.Background(), []*Step{step})
	require.NoError(t, err)

	assert.True(t, applied)
	assert.Equal(t, StatusDone, result.Steps[0].Status)
}

func TestRunRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var sleeps int
	failures := 2
	calls := 0
	step := &Step{
		ID:    "a",
		Title: "a",
		Apply: func(ctx context.Context) error {
			calls++
			if failures > 0 {
				failures--
				return errors.New("still booting")
			}
			return nil
		},
	}

	r := newTestRunner(t)
	r.Policy = Policy{Attempts: 3}
	r.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}

	result, err := r.Run(context.Background(), []*Step{step})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, sleeps)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, StatusDone, result.Steps[0].Status)
	assert.Equal(t, 3, result.Steps[0].Attempts)
}

func TestRunRetriesExhausted(t *testing.T) {
	t.Parallel()

	calls := 0
	step := &Step{
		ID:    "a",
		Title: "a",
		Apply: func(ctx context.Context) error {
			calls++
			return errors.New("broken")
		},
	}

	r := newTestRunner(t)
	r.Policy = Policy{Attempts: 2}

	result, err := r.Run(context.Background(), []*Step{step})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, StatusFailed, result.Steps[0].Status)
	assert.Equal(t, 2, result.Steps[0].Attempts)
	assert.ErrorContains(t, result.Steps[0].Err, "broken")
	assert.False(t, result.Ok())
}

func TestRunBlocksDependents(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	steps := []*Step{
		{
			ID:    "a",
			Title: "a",
			Apply: func(ctx context.Context) error { return errors.New("down") },
		},
		okStep("b", rec, "a"),
		okStep("c", rec, "b"),
		okStep("d", rec),
	}

	r := newTestRunner(t)
	result, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	assert.Equal(t, []string{"d"}, rec.calls())

	statuses := map[string]Status{}
	for _, s := range result.Steps {
		statuses[s.ID] = s.Status
	}
	assert.Equal(t, StatusFailed, statuses["a"])
	assert.Equal(t, StatusBlocked, statuses["b"])
	assert.Equal(t, StatusBlocked, statuses["c"])
	assert.Equal(t, StatusDone, statuses["d"])

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "a", failed[0].ID)
}

func TestRunSecondRunSkipsFinishedWork(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	rec := &recorder{}
	steps := func() []*Step {
		return []*Step{okStep("a", rec), okStep("b", rec, "a")}
	}

	store, err := NewStateStore(path)
	require.NoError(t, err)
	r := NewRunner(store, zerolog.Nop())
	r.Policy = Policy{Attempts: 1}
	_, err = r.Run(context.Background(), steps())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, rec.calls())

	// A fresh process reopening the same state file must not redo the work.
	store2, err := NewStateStore(path)
	require.NoError(t, err)
	r2 := NewRunner(store2, zerolog.Nop())
	r2.Policy = Policy{Attempts: 1}
	result, err := r2.Run(context.Background(), steps())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, rec.calls())
	for _, s := range result.Steps {
		assert.Equal(t, StatusSkipped, s.Status)
	}
}

func TestRunRetriesFailuresOnNextRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	broken := true
	step := func() *Step {
		return &Step{
			ID:    "a",
			Title: "a",
			Apply: func(ctx context.Context) error {
				if broken {
					return errors.New("down")
				}
				return nil
			},
		}
	}

	store, err := NewStateStore(path)
	require.NoError(t, err)
	r := NewRunner(store, zerolog.Nop())
	r.Policy = Policy{Attempts: 1}
	result, err := r.Run(context.Background(), []*Step{step()})
	require.NoError(t, err)
	require.Equal(t, StatusFailed, result.Steps[0].Status)

	broken = false
	store2, err := NewStateStore(path)
	require.NoError(t, err)
	r2 := NewRunner(store2, zerolog.Nop())
	r2.Policy = Policy{Attempts: 1}
	result, err = r2.Run(context.Background(), []*Step{step()})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, result.Steps[0].Status)
}

func TestRunStreamsEvents(t *testing.T) {
	t.Parallel()

	ch := make(chan Event, 16)
	var events []Event
	done := make(chan struct{})
	go func() {
		for e := range ch {
			events = append(events, e)
		}
		close(done)
	}()

	steps := []*Step{
		okStep("apply", &recorder{}),
		{
			ID:    "skip",
			Title: "skip",
			Probe: func(ctx context.Context) (bool, error) { return true, nil },
			Apply: func(ctx context.Context) error { return nil },
		},
	}

	r := newTestRunner(t)
	r.Events = ch
	_, err := r.Run(context.Background(), steps)
	require.NoError(t, err)
	close(ch)
	<-done

	require.Len(t, events, 4)
	assert.Equal(t, Event{StepID: "apply", Title: "apply", Status: StatusRunning, Attempt: 1}, events[0])
	assert.Equal(t, Event{StepID: "apply", Title: "apply", Status: StatusDone, Attempt: 1}, events[1])
	assert.Equal(t, Event{StepID: "skip", Title: "skip", Status: StatusRunning, Attempt: 1}, events[2])
	assert.Equal(t, Event{StepID: "skip", Title: "skip", Status: StatusSkipped}, events[3])
}

func TestRunRefusesHeldLock(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "run.lock")
	other := flock.New(lockPath)
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	r := newTestRunner(t)
	r.LockPath = lockPath
	_, err = r.Run(context.Background(), []*Step{okStep("a", &recorder{})})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t)
	result, err := r.Run(ctx, []*Step{okStep("a", &recorder{})})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Steps)
}

func TestOrderRejectsBadPlans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		steps   []*Step
		wantErr string
	}{
		{
			name:    "duplicate id",
			steps:   []*Step{{ID: "a"}, {ID: "a"}},
			wantErr: "duplicate step",
		},
		{
			name:    "unknown need",
			steps:   []*Step{{ID: "a", Needs: []string{"ghost"}}},
			wantErr: "unknown step",
		},
		{
			name:    "cycle",
			steps:   []*Step{{ID: "a", Needs: []string{"b"}}, {ID: "b", Needs: []string{"a"}}},
			wantErr: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := order(tt.steps)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPolicyDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), Policy{}.Delay(1))

	p := Policy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
	for i := 0; i < 20; i++ {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, 750*time.Millisecond)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)

		d = p.Delay(2)
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 2500*time.Millisecond)

		// Deep attempts cap at MaxDelay before jitter.
		d = p.Delay(30)
		assert.GreaterOrEqual(t, d, 22500*time.Millisecond)
		assert.LessOrEqual(t, d, 37500*time.Millisecond)
	}
}
