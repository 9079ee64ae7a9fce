package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetSessionStatePath() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type DevServerConfig interface {
	GetPort() string
	GetSigningKey() []byte
	GetAccessCredentialTTL() time.Duration
	GetRefreshCredentialTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	DevServer
}

func New() Config {
	return mainConfig{}
}
