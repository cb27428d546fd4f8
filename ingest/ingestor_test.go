package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/awantoch/formrelay/hooks"
	"github.com/awantoch/formrelay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)

type harness struct {
	notifier *fakeNotifier
	store    *fakeStore
	hook     *fakeHook
	in       *Ingestor
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{notifier: &fakeNotifier{}, store: newFakeStore(), hook: &fakeHook{}}
	n := 0
	opts := Options{
		SuccessStatuses: []string{"finished", "confirmed", "success"},
		Source:          "nowpayments",
		PaymentsPrefix:  "nowpayments/payments",
		Notifier:        h.notifier,
		Archive:         h.store,
		Hook:            h.hook,
		Now:             func() time.Time { return fixedNow },
		Suffix: func() string {
			n++
			return fmt.Sprintf("%010d", n)
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	in, err := New(opts)
	require.NoError(t, err)
	h.in = in
	return h
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var ie *Error
	require.ErrorAs(t, err, &ie)
	require.Equal(t, kind, ie.Kind)
	return ie
}

func TestProcess_HappyPath(t *testing.T) {
	h := newHarness(t, nil)
	res, err := h.in.Process(context.Background(), Request{
		Body: []byte(`{"payment_id":"p1","payment_status":"finished","pay_amount":"10","actually_paid":"10","pay_currency":"usdt"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", res.PaymentID)
	assert.Equal(t, "finished", res.Status)
	assert.Equal(t, fixedNow, res.ProcessedAt)
	assert.False(t, res.Verified)
	assert.Equal(t, OutcomeOK, res.Diagnostics.Notification.Status)
	assert.Equal(t, OutcomeOK, res.Diagnostics.Archive.Status)
	assert.Equal(t, OutcomeOK, res.Diagnostics.Hook.Status)

	assert.Equal(t, 1, h.notifier.calls())
	assert.Contains(t, h.notifier.messages[0], "p1")

	require.Len(t, h.store.keys, 1)
	key := h.store.keys[0]
	assert.Equal(t, "/nowpayments/payments/2025-06-07_p1_0000000001.json", key)
	assert.Equal(t, "mem://"+key, res.Diagnostics.Archive.Location)

	var archived map[string]any
	require.NoError(t, json.Unmarshal(h.store.objects[key], &archived))
	assert.Equal(t, "p1", archived["payment_id"])
	assert.Equal(t, "2025-06-07T08:09:10Z", archived["ipn_received_at"])
	assert.Equal(t, false, archived["ipn_verified"])
	assert.Equal(t, "nowpayments", archived["source"])

	require.Len(t, h.hook.records, 1)
	assert.Equal(t, "p1", h.hook.records[0].PaymentID())
}

func TestProcess_MinimalExample(t *testing.T) {
	h := newHarness(t, nil)
	res, err := h.in.Process(context.Background(), Request{Body: []byte(`{"payment_id":"p1"}`)})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.PaymentID)
	assert.Equal(t, "unknown", res.Status)
	assert.Equal(t, OutcomeSkipped, res.Diagnostics.Hook.Status)
	assert.Empty(t, h.hook.records)
}

func TestProcess_MissingPaymentIDTouchesNothing(t *testing.T) {
	for _, body := range []string{`{}`, `{"payment_id":""}`, `{"payment_status":"finished"}`, `payment_status=finished`} {
		h := newHarness(t, nil)
		_, err := h.in.Process(context.Background(), Request{Body: []byte(body)})
		ie := requireKind(t, err, KindValidation)
		assert.Equal(t, "Missing required fields: payment_id", ie.Message, body)
		assert.Equal(t, []string{"payment_id"}, ie.Missing)
		assert.Zero(t, h.notifier.calls())
		assert.Zero(t, h.store.calls())
		assert.Empty(t, h.hook.records)
	}
}

func TestProcess_ListsEveryMissingField(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.RequiredFields = []string{"payment_id", "invoice_id", "payment_status"}
	})
	_, err := h.in.Process(context.Background(), Request{Body: []byte(`{"invoice_id":"i1"}`)})
	ie := requireKind(t, err, KindValidation)
	assert.Equal(t, "Missing required fields: payment_id, payment_status", ie.Message)
}

func TestProcess_Signature(t *testing.T) {
	const secret = "ipn-secret"
	body := []byte(`{"payment_status":"finished","payment_id":"p1"}`)
	canonical := []byte(`{"payment_id":"p1","payment_status":"finished"}`)
	goodSig := Sign([]byte(secret), canonical)

	t.Run("valid", func(t *testing.T) {
		h := newHarness(t, func(o *Options) { o.Verifier = NewVerifier(secret, "x-nowpayments-sig") })
		res, err := h.in.Process(context.Background(), Request{Body: body, Signature: goodSig})
		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.Equal(t, 1, h.store.calls())
	})

	for name, sig := range map[string]string{
		"absent":    "",
		"wrong":     Sign([]byte("other"), canonical),
		"malformed": "zz",
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, func(o *Options) { o.Verifier = NewVerifier(secret, "x-nowpayments-sig") })
			_, err := h.in.Process(context.Background(), Request{Body: body, Signature: sig})
			ie := requireKind(t, err, KindAuth)
			assert.Equal(t, "Invalid signature", ie.Message)
			assert.Zero(t, h.notifier.calls())
			assert.Zero(t, h.store.calls())
			assert.Empty(t, h.hook.records)
		})
	}

	t.Run("urlencoded body signs raw text", func(t *testing.T) {
		raw := []byte("payment_id=p1&payment_status=waiting")
		h := newHarness(t, func(o *Options) { o.Verifier = NewVerifier(secret, "x-nowpayments-sig") })
		res, err := h.in.Process(context.Background(), Request{Body: raw, Signature: Sign([]byte(secret), raw)})
		require.NoError(t, err)
		assert.True(t, res.Verified)
	})
}

func TestProcess_FormatErrors(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.in.Process(context.Background(), Request{Body: []byte(`[{"payment_id":"p1"}]`)})
	requireKind(t, err, KindFormat)
	assert.Zero(t, h.notifier.calls())
	assert.Zero(t, h.store.calls())
}

func TestProcess_ArchiveFailureStillSucceeds(t *testing.T) {
	h := newHarness(t, nil)
	h.store.err = errors.New("bucket unavailable")
	res, err := h.in.Process(context.Background(), Request{Body: []byte(`{"payment_id":"p1","payment_status":"confirmed"}`)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Diagnostics.Archive.Status)
	assert.Equal(t, "bucket unavailable", res.Diagnostics.Archive.Error)
	assert.Equal(t, OutcomeOK, res.Diagnostics.Notification.Status)
	assert.Equal(t, OutcomeOK, res.Diagnostics.Hook.Status)
}

func TestProcess_NotifierFailureStillArchives(t *testing.T) {
	h := newHarness(t, nil)
	h.notifier.err = errors.New("connection refused")
	res, err := h.in.Process(context.Background(), Request{Body: []byte(`{"payment_id":"p1"}`)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Diagnostics.Notification.Status)
	assert.Equal(t, OutcomeOK, res.Diagnostics.Archive.Status)
	assert.Equal(t, 1, h.store.calls())
}

func TestProcess_DisabledEffectsAreSkipped(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Archive = nil
		o.Hook = nil
	})
	h.notifier.disabled = true
	res, err := h.in.Process(context.Background(), Request{Body: []byte(`{"payment_id":"p1","payment_status":"finished"}`)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Diagnostics.Notification.Status)
	assert.Equal(t, OutcomeSkipped, res.Diagnostics.Archive.Status)
	assert.Equal(t, OutcomeSkipped, res.Diagnostics.Hook.Status)
	assert.Zero(t, h.notifier.calls())
}

func TestProcess_HookPanicIsContained(t *testing.T) {
	h := newHarness(t, nil)
	h.hook.panics = true
	res, err := h.in.Process(context.Background(), Request{Body: []byte(`{"payment_id":"p1","payment_status":"success"}`)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Diagnostics.Hook.Status)
	assert.Contains(t, res.Diagnostics.Hook.Error, "hook exploded")
}

func TestProcess_HookReceivesResolvedEmail(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.in.Process(context.Background(), Request{
		Body: []byte(`payment_id=p1&payment_status=finished&customer_email=c%40example.com`),
	})
	require.NoError(t, err)
	require.Len(t, h.hook.emails, 1)
	assert.Equal(t, "c@example.com", h.hook.emails[0])
}

func TestProcess_SamePaymentTwiceGetsDistinctKeys(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Suffix = nil })
	body := []byte(`{"payment_id":"p1"}`)
	for i := 0; i < 2; i++ {
		_, err := h.in.Process(context.Background(), Request{Body: body})
		require.NoError(t, err)
	}
	require.Len(t, h.store.keys, 2)
	assert.NotEqual(t, h.store.keys[0], h.store.keys[1])
}

func TestProcess_RecordIsNotSharedWithHook(t *testing.T) {
	h := newHarness(t, nil)
	h.in.opts.Hook = hooks.Func(func(_ context.Context, r model.PaymentRecord, _ string) error {
		r["payment_id"] = "mutated"
		return nil
	})
	res, err := h.in.Process(context.Background(), Request{Body: []byte(`{"payment_id":"p1","payment_status":"finished"}`)})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.Record.PaymentID())
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, 400, KindValidation.HTTPStatus())
	assert.Equal(t, 400, KindFormat.HTTPStatus())
	assert.Equal(t, 401, KindAuth.HTTPStatus())
	assert.Equal(t, 500, KindInternal.HTTPStatus())

	cause := errors.New("boom")
	err := &Error{Kind: KindInternal, Message: "failed", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed: boom", err.Error())
}
