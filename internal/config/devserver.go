package config

import (
	"fmt"
	"time"
)

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetPort() string {
	port := GetEnv("PORT", "8000")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetSigningKey is the HS256 key the development server mints credentials
// with. Not for production use.
func (DevServer) GetSigningKey() []byte {
	return []byte(GetEnv("DEVSERVER_SIGNING_KEY", "devserver-signing-key"))
}

func (DevServer) GetAccessCredentialTTL() time.Duration {
	return 15 * time.Minute
}

func (DevServer) GetRefreshCredentialTTL() time.Duration {
	return 24 * time.Hour
}
