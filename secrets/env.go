package secrets

import (
	"context"
	"fmt"
	"os"
)

// EnvSecretsProvider implements SecretsProvider using environment variables
type EnvSecretsProvider struct {
	prefix string
}

var _ SecretsProvider = (*EnvSecretsProvider)(nil)

func NewEnvSecretsProvider(prefix string) *EnvSecretsProvider {
	return &EnvSecretsProvider{prefix: prefix}
}

// GetSecret reads prefix+key, falling back to the bare key.
func (e *EnvSecretsProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if e.prefix != "" {
		if v := os.Getenv(e.prefix + key); v != "" {
			return v, nil
		}
	}
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w in environment: %s", ErrNotFound, key)
}

func (e *EnvSecretsProvider) Close() error { return nil }
