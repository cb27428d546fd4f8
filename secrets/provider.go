package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a provider has no value for a key.
var ErrNotFound = errors.New("secret not found")

// SecretsProvider looks up credentials by name.
type SecretsProvider interface {
	GetSecret(ctx context.Context, key string) (string, error)
	Close() error
}
