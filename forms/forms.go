// Package forms relays public-site form submissions (subscribe, membership
// and pay-to-download requests, newsletter cancellations) to the chat sink.
package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/awantoch/formrelay/blob"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/ingest"
	"github.com/awantoch/formrelay/logger"
	"github.com/awantoch/formrelay/model"
	"github.com/awantoch/formrelay/notify"
)

const (
	fieldType  = "type"
	fieldEmail = "email"
	fieldURL   = "url"
)

// DeliveryError means a form message could not be handed to the sink.
type DeliveryError struct {
	Status  int
	Message string
	Detail  string
	Err     error
}

func (e *DeliveryError) Error() string { return e.Message + ": " + e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

// deliveryError maps a notifier failure onto the response the caller sees.
func deliveryError(err error) *DeliveryError {
	var se *notify.StatusError
	switch {
	case errors.Is(err, notify.ErrDisabled):
		return &DeliveryError{Status: http.StatusServiceUnavailable, Message: constants.ResponseNotificationsDisabled, Err: err}
	case errors.As(err, &se):
		return &DeliveryError{Status: http.StatusBadGateway, Message: constants.ResponseWebhookServiceError, Detail: se.Body, Err: err}
	default:
		return &DeliveryError{Status: http.StatusGatewayTimeout, Message: constants.ResponseWebhookTimeout, Detail: constants.ResponseWebhookNoResponse, Err: err}
	}
}

type Options struct {
	Notifier     notify.Notifier
	Formatter    *notify.Formatter
	Archive      blob.BlobStore
	EmailsPrefix string
	Now          func() time.Time
	Suffix       func() string
}

// Service handles form submissions. It is safe for concurrent use.
type Service struct {
	opts Options
}

func New(opts Options) (*Service, error) {
	if opts.Notifier == nil {
		opts.Notifier = notify.Disabled{}
	}
	if opts.Formatter == nil {
		f, err := notify.NewFormatter()
		if err != nil {
			return nil, fmt.Errorf("failed to compile message templates: %w", err)
		}
		opts.Formatter = f
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Suffix == nil {
		opts.Suffix = blob.RandomSuffix
	}
	return &Service{opts: opts}, nil
}

// ParseFields reads a JSON object or URL-encoded body into string fields.
func ParseFields(raw []byte) (map[string]string, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]string{}, nil
	}
	rec, err := ingest.Normalize(ingest.ClassifyBody(raw))
	if err != nil {
		return nil, &ingest.Error{Kind: ingest.KindFormat, Message: constants.ResponseInvalidRequestBody, Err: err}
	}
	return rec, nil
}

// SubscribeResult acknowledges a relayed form submission.
type SubscribeResult struct {
	Message   string
	Type      int
	Email     string
	Timestamp time.Time
}

// Subscribe relays one subscribe or membership request. Delivery is the
// whole point of the call, so sink failures are returned as *DeliveryError.
func (s *Service) Subscribe(ctx context.Context, raw []byte) (*SubscribeResult, error) {
	fields, err := ParseFields(raw)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(fields[fieldEmail])
	if fields[fieldType] == "" || email == "" {
		return nil, &ingest.Error{
			Kind:    ingest.KindValidation,
			Message: constants.ResponseFormMissingFields,
			Missing: missing(fields, fieldType, fieldEmail),
		}
	}

	kind, rawType := model.ParseRequestType(fields[fieldType])
	sub := model.FormSubmission{
		Type:       kind,
		RawType:    rawType,
		Email:      email,
		URL:        fields[fieldURL],
		ReceivedAt: s.opts.Now().UTC(),
	}
	content, err := s.opts.Formatter.Form(sub)
	if err != nil {
		return nil, &ingest.Error{Kind: ingest.KindInternal, Message: constants.ResponseInternalError, Err: err}
	}
	if err := s.opts.Notifier.Notify(ctx, content); err != nil {
		logger.ErrorCtx(ctx, "form relay failed", "type", rawType, "error", err)
		return nil, deliveryError(err)
	}
	logger.InfoCtx(ctx, "form request relayed", "type", rawType, "kind", kind.String())
	return &SubscribeResult{
		Message:   acknowledgement(kind),
		Type:      rawType,
		Email:     email,
		Timestamp: sub.ReceivedAt,
	}, nil
}

func acknowledgement(t model.RequestType) string {
	switch t {
	case model.RequestSubscribe:
		return constants.ResponseSubscribed
	case model.RequestMonthlyMembership:
		return constants.ResponseMonthlyMembership
	case model.RequestAnnualMembership:
		return constants.ResponseAnnualMembership
	case model.RequestPayDownload:
		return constants.ResponsePayDownload
	default:
		return constants.ResponseUnknownRequest
	}
}

// UnsubscribeResult acknowledges a newsletter cancellation.
type UnsubscribeResult struct {
	Email        string
	Timestamp    time.Time
	Notification ingest.Outcome
	Archive      ingest.Outcome
}

// Unsubscribe records a newsletter cancellation. Notification and archive
// are both best-effort; once the email validates the call succeeds.
func (s *Service) Unsubscribe(ctx context.Context, raw []byte) (*UnsubscribeResult, error) {
	fields, err := ParseFields(raw)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(fields[fieldEmail])
	if email == "" {
		return nil, &ingest.Error{
			Kind:    ingest.KindValidation,
			Message: constants.ResponseUnsubscribeMissing,
			Missing: []string{fieldEmail},
		}
	}

	now := s.opts.Now().UTC()
	res := &UnsubscribeResult{Email: email, Timestamp: now}
	res.Notification = ingest.RunEffect(ctx, ingest.EffectNotification, func() ingest.Outcome {
		if !s.opts.Notifier.Enabled() {
			return ingest.Skipped(notify.ErrDisabled.Error())
		}
		content, err := s.opts.Formatter.Unsubscribe(email, now)
		if err != nil {
			return ingest.Failed(err)
		}
		if err := s.opts.Notifier.Notify(ctx, content); err != nil {
			return ingest.Failed(err)
		}
		return ingest.Succeeded("")
	})
	res.Archive = ingest.RunEffect(ctx, ingest.EffectArchive, func() ingest.Outcome {
		if s.opts.Archive == nil {
			return ingest.Skipped(blob.ErrNotConfigured.Error())
		}
		data, err := json.Marshal(model.NewUnsubscribeEntry(email, now))
		if err != nil {
			return ingest.Failed(err)
		}
		key := blob.DatedKey(s.opts.EmailsPrefix, now, s.opts.Suffix(), ".json")
		url, err := s.opts.Archive.Put(ctx, data, constants.ContentTypeJSON, key)
		if err != nil {
			return ingest.Failed(err)
		}
		return ingest.Succeeded(url)
	})
	logger.InfoCtx(ctx, "unsubscribe recorded", "archive", res.Archive.Status)
	return res, nil
}

func missing(fields map[string]string, keys ...string) []string {
	var out []string
	for _, k := range keys {
		if strings.TrimSpace(fields[k]) == "" {
			out = append(out, k)
		}
	}
	return out
}
