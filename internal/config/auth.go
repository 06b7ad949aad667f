package config

import "sync"

type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"`
}

var (
	authConfig *AuthConfig
	authOnce   sync.Once
)

func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		authConfig = &AuthConfig{}
		parse(authConfig, "auth")
	})
	return authConfig
}
