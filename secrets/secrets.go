package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
)

// NewSecretsProvider creates a secrets provider from configuration.
func NewSecretsProvider(ctx context.Context, cfg config.SecretsConfig) (SecretsProvider, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", constants.SecretsDriverEnv:
		return NewEnvSecretsProvider(cfg.Prefix), nil
	case constants.SecretsDriverAWS:
		return NewAWSSecretsProvider(ctx, cfg.Region, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unsupported secrets driver: %s", cfg.Driver)
	}
}

// Resolve fills credentials still blank in cfg from p. Each credential is
// looked up under the name of the environment variable that would carry it.
// Missing secrets are left blank; the features they gate stay disabled.
func Resolve(ctx context.Context, p SecretsProvider, cfg *config.Config) error {
	slots := []struct {
		key string
		dst *string
	}{
		{constants.EnvIPNSecret, &cfg.IPN.Secret},
		{constants.EnvWebhookURL, &cfg.Notify.WebhookURL},
		{constants.EnvArchiveKey, &cfg.Archive.AccessKey},
		{constants.EnvArchiveSecret, &cfg.Archive.SecretKey},
		{constants.EnvArchiveDSN, &cfg.Archive.DSN},
	}
	for _, s := range slots {
		if *s.dst != "" {
			continue
		}
		v, err := p.GetSecret(ctx, s.key)
		if errors.Is(err, ErrNotFound) {
			logger.Debug("secret %s not set", s.key)
			continue
		}
		if err != nil {
			return err
		}
		*s.dst = v
	}
	return nil
}
