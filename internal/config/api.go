package config

import (
	"strconv"
	"time"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the root of the portal backend API, without a trailing
// slash (e.g. "http://localhost:8000/api").
func (API) GetAPIBaseURL() string {
	return GetEnv("PORTAL_API_URL", "http://localhost:8000/api")
}

// GetAPITimeout bounds every authentication call to the backend.
func (API) GetAPITimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("PORTAL_API_TIMEOUT_SECONDS", "10"))
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}
