package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/awantoch/formrelay/blob"
	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/event"
	"github.com/awantoch/formrelay/forms"
	"github.com/awantoch/formrelay/hooks"
	"github.com/awantoch/formrelay/ingest"
	"github.com/awantoch/formrelay/logger"
	"github.com/awantoch/formrelay/notify"
	"github.com/awantoch/formrelay/secrets"
)

// Services is the process-wide wiring shared by every request.
type Services struct {
	Config   *config.Config
	Ingestor *ingest.Ingestor
	Forms    *forms.Service
	Bus      event.EventBus
	Archive  blob.BlobStore
}

// InitializeDependencies builds the notifier, archive store, event bus and
// handlers from cfg. The returned cleanup releases whatever was opened.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (*Services, func(), error) {
	provider, err := secrets.NewSecretsProvider(ctx, cfg.Secrets)
	if err != nil {
		return nil, nil, err
	}
	defer provider.Close()
	if err := secrets.Resolve(ctx, provider, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to resolve secrets: %w", err)
	}

	formatter, err := notify.NewFormatter()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile message templates: %w", err)
	}
	notifier := notify.New(cfg.Notify.WebhookURL, cfg.Notify.NotifyTimeout())

	archive, err := blob.NewDefaultBlobStore(ctx, cfg.Archive)
	if err != nil {
		if !errors.Is(err, blob.ErrNotConfigured) {
			return nil, nil, err
		}
		logger.WarnCtx(ctx, constants.LogArchiveDisabled, "reason", err.Error())
		archive = nil
	}

	bus, err := event.NewEventBusFromConfig(&cfg.Event)
	if err != nil {
		logger.WarnCtx(ctx, "failed to create event bus, using in-memory fallback", "error", err)
		bus = event.NewInProcEventBus()
	}

	hook := hooks.Chain{hooks.LogHook{}, hooks.NewEventHook(bus)}

	in, err := ingest.New(ingest.Options{
		Verifier:        ingest.NewVerifier(cfg.IPN.Secret, cfg.IPN.SignatureHeader),
		RequiredFields:  cfg.IPN.RequiredFields,
		SuccessStatuses: cfg.IPN.SuccessStatuses,
		Source:          cfg.IPN.Source,
		PaymentsPrefix:  cfg.Archive.PaymentsPrefix,
		Notifier:        notifier,
		Formatter:       formatter,
		Archive:         archive,
		Hook:            hook,
	})
	if err != nil {
		return nil, nil, err
	}
	fs, err := forms.New(forms.Options{
		Notifier:     notifier,
		Formatter:    formatter,
		Archive:      archive,
		EmailsPrefix: cfg.Archive.EmailsPrefix,
	})
	if err != nil {
		return nil, nil, err
	}

	svc := &Services{Config: cfg, Ingestor: in, Forms: fs, Bus: bus, Archive: archive}
	cleanup := func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus: %v", err)
		}
		if archive != nil {
			if closer, ok := archive.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close archive store: %v", err)
				}
			}
		}
	}
	return svc, cleanup, nil
}
