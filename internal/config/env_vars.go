package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar = "APP_NAME"
	folderVar  = "FOLDER"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Maternal Portal")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderVar, "./data")
}

// GetSessionStatePath is where the credential pair is persisted across process
// restarts.
func (e EnvVars) GetSessionStatePath() string {
	return GetEnv("SESSION_STATE_PATH", filepath.Join(e.GetDataFolder(), "session.json"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
