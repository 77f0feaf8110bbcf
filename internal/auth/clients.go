package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/airo-kpi/redo-service/internal/config"
)

// ErrInvalidCredentials is returned when client id or secret do not match.
var ErrInvalidCredentials = errors.New("invalid client credentials")

// ClientRegistry verifies API client credentials configured at startup.
// Secrets are held only as bcrypt hashes.
type ClientRegistry struct {
	hashes map[string]string
}

// NewClientRegistry builds the registry from configuration. A plaintext
// secret (development convenience) is hashed on load; a pre-hashed secret
// takes precedence.
func NewClientRegistry(cfg config.AuthConfig) (*ClientRegistry, error) {
	registry := &ClientRegistry{hashes: make(map[string]string)}
	if cfg.ClientID == "" {
		return registry, nil
	}

	hash := cfg.ClientSecretHash
	if hash == "" && cfg.ClientSecret != "" {
		hashed, err := HashSecret(cfg.ClientSecret, cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		hash = hashed
	}
	if hash != "" {
		registry.hashes[cfg.ClientID] = hash
	}
	return registry, nil
}

// Verify checks a client id and secret pair.
func (r *ClientRegistry) Verify(clientID, secret string) error {
	hash, ok := r.hashes[clientID]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := CompareSecret(hash, secret); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashSecret hashes a client secret with the configured cost.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareSecret verifies a secret against its hashed value.
func CompareSecret(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
