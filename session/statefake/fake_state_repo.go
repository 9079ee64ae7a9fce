// Package statefake provides an in-memory session.StateRepo for tests.
package statefake

import (
	"sync"

	"github.com/maternalcare/portal-core/session"
)

var _ session.StateRepo = (*FakeStateRepo)(nil)

type FakeStateRepo struct {
	mu    sync.Mutex
	state session.State
	has   bool

	// Error overrides for failure-path tests.
	SaveErr  error
	ClearErr error
}

func NewFakeStateRepo() *FakeStateRepo {
	return &FakeStateRepo{}
}

// Seed pre-populates the repo, simulating state left by a prior process.
func (f *FakeStateRepo) Seed(state session.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.has = true
}

func (f *FakeStateRepo) Save(state session.State) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.has = true
	return nil
}

func (f *FakeStateRepo) Load() (session.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.has {
		return session.State{}, session.ErrNoState
	}
	return f.state, nil
}

func (f *FakeStateRepo) Clear() error {
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = session.State{}
	f.has = false
	return nil
}

// Persisted returns the current persisted state and whether any exists.
func (f *FakeStateRepo) Persisted() (session.State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.has
}
