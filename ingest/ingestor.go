package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/awantoch/formrelay/blob"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/hooks"
	"github.com/awantoch/formrelay/logger"
	"github.com/awantoch/formrelay/model"
	"github.com/awantoch/formrelay/notify"
	"github.com/awantoch/formrelay/telemetry"
)

// Effect names used in logs and metrics.
const (
	EffectNotification = "notification"
	EffectArchive      = "archive"
	EffectHook         = "hook"
)

// Options wires an Ingestor. Nil Notifier, Archive or Hook skip that effect;
// a nil Verifier disables signature checks.
type Options struct {
	Verifier        *Verifier
	RequiredFields  []string
	SuccessStatuses []string
	Source          string
	PaymentsPrefix  string

	Notifier  notify.Notifier
	Formatter *notify.Formatter
	Archive   blob.BlobStore
	Hook      hooks.PaymentHook

	Now    func() time.Time
	Suffix func() string
}

// Ingestor processes payment status notifications. It holds no per-request
// state and is safe for concurrent use.
type Ingestor struct {
	opts Options
}

// New returns an Ingestor with defaults filled in for unset options.
func New(opts Options) (*Ingestor, error) {
	if opts.Formatter == nil {
		f, err := notify.NewFormatter()
		if err != nil {
			return nil, fmt.Errorf("failed to compile message templates: %w", err)
		}
		opts.Formatter = f
	}
	if opts.RequiredFields == nil {
		opts.RequiredFields = []string{model.FieldPaymentID}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Suffix == nil {
		opts.Suffix = blob.RandomSuffix
	}
	if opts.Verifier == nil {
		logger.Warn(constants.LogSignatureDisabled)
	}
	return &Ingestor{opts: opts}, nil
}

// Request is one inbound notification.
type Request struct {
	Body      []byte
	Signature string
}

// Result acknowledges a processed notification.
type Result struct {
	PaymentID   string
	Status      string
	ProcessedAt time.Time
	Verified    bool
	Record      model.PaymentRecord
	Diagnostics Diagnostics
}

// Process validates req and runs every side effect. A returned error is
// always an *Error and means no side effect ran.
func (in *Ingestor) Process(ctx context.Context, req Request) (*Result, error) {
	received := in.opts.Now().UTC()
	body := ClassifyBody(req.Body)

	verified, err := in.verify(body, req.Signature)
	if err != nil {
		return nil, err
	}

	record, err := Normalize(body)
	if err != nil {
		var ie *Error
		if errors.As(err, &ie) {
			return nil, ie
		}
		return nil, formatError(constants.ResponseInvalidIPNFormat, err)
	}

	if missing := record.Missing(in.opts.RequiredFields); len(missing) > 0 {
		logger.WarnCtx(ctx, "rejected payment notification", "missing", missing)
		return nil, missingFieldsError(missing)
	}

	res := &Result{
		PaymentID:   record.PaymentID(),
		Status:      record.Status(),
		ProcessedAt: received,
		Verified:    verified,
		Record:      record,
	}
	logger.InfoCtx(ctx, "received payment notification",
		"payment_id", res.PaymentID, "status", res.Status, "verified", verified)

	res.Diagnostics.Notification = RunEffect(ctx, EffectNotification, func() Outcome {
		return in.notify(ctx, record)
	})
	res.Diagnostics.Archive = RunEffect(ctx, EffectArchive, func() Outcome {
		return in.archive(ctx, model.ArchiveEntry{
			Record:     record,
			ReceivedAt: received,
			Verified:   verified,
			Source:     in.opts.Source,
		})
	})
	res.Diagnostics.Hook = RunEffect(ctx, EffectHook, func() Outcome {
		return in.hook(ctx, record)
	})
	return res, nil
}

func (in *Ingestor) verify(body Body, signature string) (bool, error) {
	if in.opts.Verifier == nil {
		return false, nil
	}
	if signature == "" {
		return false, &Error{Kind: KindAuth, Message: constants.ResponseInvalidSignature}
	}
	payload, err := body.Canonical()
	if err != nil {
		return false, &Error{Kind: KindAuth, Message: constants.ResponseInvalidSignature, Err: err}
	}
	if !in.opts.Verifier.Verify(payload, signature) {
		return false, &Error{Kind: KindAuth, Message: constants.ResponseInvalidSignature}
	}
	return true, nil
}

func (in *Ingestor) notify(ctx context.Context, record model.PaymentRecord) Outcome {
	if in.opts.Notifier == nil || !in.opts.Notifier.Enabled() {
		return Skipped(notify.ErrDisabled.Error())
	}
	content, err := in.opts.Formatter.Payment(record, in.opts.Source)
	if err != nil {
		return Failed(fmt.Errorf("failed to render message: %w", err))
	}
	if err := in.opts.Notifier.Notify(ctx, content); err != nil {
		return Failed(err)
	}
	return Succeeded("")
}

func (in *Ingestor) archive(ctx context.Context, entry model.ArchiveEntry) Outcome {
	if in.opts.Archive == nil {
		return Skipped(blob.ErrNotConfigured.Error())
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return Failed(fmt.Errorf("failed to encode archive entry: %w", err))
	}
	key := blob.DatedKey(in.opts.PaymentsPrefix, entry.ReceivedAt, in.opts.Suffix(), ".json", entry.Record.PaymentID())
	url, err := in.opts.Archive.Put(ctx, data, constants.ContentTypeJSON, key)
	if err != nil {
		return Failed(err)
	}
	return Succeeded(url)
}

func (in *Ingestor) hook(ctx context.Context, record model.PaymentRecord) Outcome {
	status := record.Get(model.FieldPaymentStatus)
	if in.opts.Hook == nil {
		return Skipped("no hook configured")
	}
	if !slices.Contains(in.opts.SuccessStatuses, status) {
		return Skipped("status " + record.Status() + " does not trigger the hook")
	}
	if err := in.opts.Hook.PaymentSucceeded(ctx, record.Clone(), record.Email()); err != nil {
		return Failed(err)
	}
	return Succeeded("")
}

// RunEffect runs one best-effort step, logging and counting its outcome.
// A panic becomes a failed outcome.
func RunEffect(ctx context.Context, effect string, fn func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(fmt.Errorf("panic: %v", r))
		}
		switch out.Status {
		case OutcomeFailed:
			logger.ErrorCtx(ctx, effect+" failed", "error", out.Error)
		case OutcomeSkipped:
			logger.DebugCtx(ctx, effect+" skipped", "reason", out.Reason)
		}
		telemetry.ObserveSideEffect(effect, string(out.Status))
	}()
	return fn()
}
