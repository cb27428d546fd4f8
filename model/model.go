package model

import (
	"encoding/json"
	"sort"
	"time"
)

// Field names used by payment processors in IPN callbacks.
const (
	FieldPaymentID     = "payment_id"
	FieldInvoiceID     = "invoice_id"
	FieldPaymentStatus = "payment_status"
	FieldPayAmount     = "pay_amount"
	FieldPayCurrency   = "pay_currency"
	FieldActuallyPaid  = "actually_paid"
	FieldPayAddress    = "pay_address"
	FieldOrderID       = "order_id"
	FieldEmail         = "email"
	FieldCustomerEmail = "customer_email"
	FieldCreatedAt     = "created_at"
	FieldUpdatedAt     = "updated_at"
)

// Metadata keys added to archived payment records.
const (
	MetaReceivedAt = "ipn_received_at"
	MetaVerified   = "ipn_verified"
	MetaSource     = "source"
)

// PaymentRecord is a normalized payment notification. Values are the textual
// form of whatever the processor sent; absent and empty values are equivalent.
type PaymentRecord map[string]string

// Get returns the value for key, or "" when absent.
func (r PaymentRecord) Get(key string) string {
	if r == nil {
		return ""
	}
	return r[key]
}

// Has reports whether key is present with a non-empty value.
func (r PaymentRecord) Has(key string) bool {
	return r.Get(key) != ""
}

// Or returns the value for key, or placeholder when it is absent.
func (r PaymentRecord) Or(key, placeholder string) string {
	if v := r.Get(key); v != "" {
		return v
	}
	return placeholder
}

// Missing returns every field in required that has no value, in order.
func (r PaymentRecord) Missing(required []string) []string {
	var missing []string
	for _, f := range required {
		if !r.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (r PaymentRecord) PaymentID() string { return r.Get(FieldPaymentID) }

// Status returns the payment status, or "unknown".
func (r PaymentRecord) Status() string { return r.Or(FieldPaymentStatus, "unknown") }

// Email resolves the contact email, preferring email over customer_email.
func (r PaymentRecord) Email() string {
	if v := r.Get(FieldEmail); v != "" {
		return v
	}
	return r.Get(FieldCustomerEmail)
}

// Keys returns the record's field names in sorted order.
func (r PaymentRecord) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r PaymentRecord) Clone() PaymentRecord {
	out := make(PaymentRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ArchiveEntry is a PaymentRecord plus ingestion metadata. It is written once
// and never updated.
type ArchiveEntry struct {
	Record     PaymentRecord
	ReceivedAt time.Time
	Verified   bool
	Source     string
}

// MarshalJSON flattens the record fields and metadata into one object.
// Metadata wins over record fields of the same name.
func (e ArchiveEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Record)+3)
	for k, v := range e.Record {
		out[k] = v
	}
	out[MetaReceivedAt] = e.ReceivedAt.UTC().Format(time.RFC3339Nano)
	out[MetaVerified] = e.Verified
	if e.Source != "" {
		out[MetaSource] = e.Source
	}
	return json.Marshal(out)
}
