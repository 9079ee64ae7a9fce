package session

// State is the persisted credential pair. It survives process restarts so a new
// process can rehydrate the session without forcing a fresh login. No
// encryption is applied at this layer.
type State struct {
	AccessCredential   string `json:"access_credential"`
	RefreshCredential  string `json:"refresh_credential"`
	MustChangePassword bool   `json:"must_change_password"`
}

// StateRepo persists the credential pair across process restarts.
type StateRepo interface {
	Save(state State) error
	// Load returns ErrNoState when nothing has been persisted.
	Load() (State, error)
	// Clear removes any persisted state. Clearing absent state is not an error.
	Clear() error
}
