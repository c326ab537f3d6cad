package config

import (
	"time"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

var JWTSecret = []byte(defaultJWTSecret)
var JWTExpiration = 24 * time.Hour

// SetJWT replaces the signing secret and token lifetime. Load calls it once at startup.
func SetJWT(secret string, expiration time.Duration) {
	if secret == "" {
		secret = defaultJWTSecret
	}
	JWTSecret = []byte(secret)
	if expiration > 0 {
		JWTExpiration = expiration
	}
}
