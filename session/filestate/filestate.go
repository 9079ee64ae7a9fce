// Package filestate persists the session credential pair as a JSON file on
// disk, the portal's restart-survival store.
package filestate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/maternalcare/portal-core/session"
	"github.com/pkg/errors"
)

var _ session.StateRepo = (*Repo)(nil)

// Repo stores session state in a single JSON file. The file is written with
// 0600 permissions; no additional encryption is applied.
type Repo struct {
	path string
	mu   sync.Mutex
}

// NewRepo creates a file-backed state repo at the given path.
func NewRepo(path string) (*Repo, error) {
	if path == "" {
		return nil, errors.New("[filestate.NewRepo] path is required")
	}
	return &Repo{path: path}, nil
}

func (r *Repo) Save(state session.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "[filestate.Save] marshal state")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[filestate.Save] create state folder")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[filestate.Save] write state file")
	}
	return nil
}

func (r *Repo) Load() (session.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return session.State{}, session.ErrNoState
	}
	if err != nil {
		return session.State{}, errors.Wrap(err, "[filestate.Load] read state file")
	}

	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		return session.State{}, errors.Wrap(err, "[filestate.Load] unmarshal state")
	}
	return state, nil
}

func (r *Repo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[filestate.Clear] remove state file")
	}
	return nil
}
