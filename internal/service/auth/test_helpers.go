package auth

import "time"

// NewTestJWTService creates a JWT service with explicit secrets,
// lifetimes and an injectable clock. Intended for tests that need
// deterministic expiry behavior.
func NewTestJWTService(
	accessSecret, refreshSecret string,
	accessLifetime, refreshLifetime time.Duration,
	timeFunc func() time.Time,
) JWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacJWTService{
		accessKey:       []byte(accessSecret),
		refreshKey:      []byte(refreshSecret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		timeFunc:        timeFunc,
		clockSkew:       0,
	}
}
