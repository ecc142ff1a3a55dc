package provision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// stateVersion tags the state file layout.
const stateVersion = 1

// StepState is the persisted outcome of one step.
type StepState struct {
	Status    Status    `json:"status"`
	Attempts  int       `json:"attempts,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type stateFile struct {
	Version int                  `json:"version"`
	Steps   map[string]StepState `json:"steps"`
}

// StateStore persists step outcomes to a JSON file so a rerun never repeats
// finished work. Safe for concurrent use.
type StateStore struct {
	path string

	mu    sync.Mutex
	steps map[string]StepState
}

// NewStateStore opens the store at path, loading prior outcomes when the
// file exists.
func NewStateStore(path string) (*StateStore, error) {
	s := &StateStore{path: path, steps: map[string]StepState{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading provision state: %w", err)
	}

	var f stateFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.Steps != nil {
		s.steps = f.Steps
	}
	return s, nil
}

// Path returns the backing file's location.
func (s *StateStore) Path() string {
	return s.path
}

// Done reports whether id finished in this or an earlier run.
func (s *StateStore) Done(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.steps[id]
	return ok && (st.Status == StatusDone || st.Status == StatusSkipped)
}

// Get returns the recorded outcome for id.
func (s *StateStore) Get(id string) (StepState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.steps[id]
	return st, ok
}

// Record stores the outcome for id and rewrites the file.
func (s *StateStore) Record(id string, st StepState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	s.steps[id] = st
	return s.save()
}

// Reset forgets the outcomes of the given steps, or of every step when none
// are named. The next run re-probes and re-applies them.
func (s *StateStore) Reset(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) == 0 {
		s.steps = map[string]StepState{}
	} else {
		for _, id := range ids {
			delete(s.steps, id)
		}
	}
	return s.save()
}

// save rewrites the backing file. Callers hold s.mu.
func (s *StateStore) save() error {
	raw, err := json.MarshalIndent(stateFile{Version: stateVersion, Steps: s.steps}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding provision state: %w", err)
	}
	raw = append(raw, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing provision state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing provision state: %w", err)
	}
	return nil
}
