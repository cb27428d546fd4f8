// Package hooks holds the actions fired when a payment reaches a success
// status: entitlement grants, confirmation emails and the like live behind
// the event bus, these hooks only hand the payment over.
package hooks

import (
	"context"
	"errors"
	"time"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/event"
	"github.com/awantoch/formrelay/logger"
	"github.com/awantoch/formrelay/model"
)

// PaymentHook is invoked with the record and resolved contact email of a
// payment whose status is in the configured success set.
type PaymentHook interface {
	PaymentSucceeded(ctx context.Context, record model.PaymentRecord, email string) error
}

// Func adapts a function to PaymentHook.
type Func func(ctx context.Context, record model.PaymentRecord, email string) error

func (f Func) PaymentSucceeded(ctx context.Context, record model.PaymentRecord, email string) error {
	return f(ctx, record, email)
}

// Chain runs every hook in order and joins their errors.
type Chain []PaymentHook

func (c Chain) PaymentSucceeded(ctx context.Context, record model.PaymentRecord, email string) error {
	var errs []error
	for _, h := range c {
		if h == nil {
			continue
		}
		if err := h.PaymentSucceeded(ctx, record, email); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogHook records completed payments and pending confirmation emails.
type LogHook struct{}

func (LogHook) PaymentSucceeded(ctx context.Context, record model.PaymentRecord, email string) error {
	logger.InfoCtx(ctx, "payment completed", "payment_id", record.PaymentID(), "status", record.Status())
	if email != "" {
		logger.InfoCtx(ctx, "confirmation email pending", "payment_id", record.PaymentID(), "email", email)
	}
	return nil
}

// PaymentSucceededEvent is the payload published on payment.succeeded.
type PaymentSucceededEvent struct {
	PaymentID   string    `json:"payment_id"`
	InvoiceID   string    `json:"invoice_id,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	Status      string    `json:"status"`
	Amount      string    `json:"pay_amount,omitempty"`
	Currency    string    `json:"pay_currency,omitempty"`
	Email       string    `json:"email,omitempty"`
	SucceededAt time.Time `json:"succeeded_at"`
}

// EventHook publishes successful payments onto an event bus.
type EventHook struct {
	Bus   event.EventBus
	Topic string
	Now   func() time.Time
}

func NewEventHook(bus event.EventBus) *EventHook {
	return &EventHook{Bus: bus, Topic: constants.TopicPaymentSucceeded, Now: time.Now}
}

func (h *EventHook) PaymentSucceeded(ctx context.Context, record model.PaymentRecord, email string) error {
	if h.Bus == nil {
		return nil
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	evt := PaymentSucceededEvent{
		PaymentID:   record.PaymentID(),
		InvoiceID:   record.Get(model.FieldInvoiceID),
		OrderID:     record.Get(model.FieldOrderID),
		Status:      record.Status(),
		Amount:      record.Get(model.FieldPayAmount),
		Currency:    record.Get(model.FieldPayCurrency),
		Email:       email,
		SucceededAt: now().UTC(),
	}
	return h.Bus.Publish(ctx, h.Topic, evt)
}
