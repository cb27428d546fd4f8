package notify

import (
	_ "embed"
	"strconv"
	"strings"
	"time"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/model"
	pongo2 "github.com/flosch/pongo2/v6"
	"github.com/shopspring/decimal"
)

//go:embed templates/payment.md
var paymentTemplate string

//go:embed templates/form.md
var formTemplate string

//go:embed templates/unsubscribe.md
var unsubscribeTemplate string

// Formatter renders notification messages. It holds only compiled templates
// and is safe for concurrent use.
type Formatter struct {
	payment     *pongo2.Template
	form        *pongo2.Template
	unsubscribe *pongo2.Template
}

func NewFormatter() (*Formatter, error) {
	payment, err := pongo2.FromString(paymentTemplate)
	if err != nil {
		return nil, err
	}
	form, err := pongo2.FromString(formTemplate)
	if err != nil {
		return nil, err
	}
	unsubscribe, err := pongo2.FromString(unsubscribeTemplate)
	if err != nil {
		return nil, err
	}
	return &Formatter{payment: payment, form: form, unsubscribe: unsubscribe}, nil
}

// Payment renders the summary for a payment record.
func (f *Formatter) Payment(r model.PaymentRecord, source string) (string, error) {
	return render(f.payment, PaymentView(r, source))
}

// Form renders a subscribe or membership request.
func (f *Formatter) Form(s model.FormSubmission) (string, error) {
	url := s.URL
	if url == "" {
		url = constants.PlaceholderNotGiven
	}
	return render(f.form, pongo2.Context{
		"kind":        s.Type.String(),
		"raw_type":    strconv.Itoa(s.RawType),
		"email":       s.Email,
		"url":         url,
		"received_at": formatTime(s.ReceivedAt),
	})
}

// Unsubscribe renders a newsletter cancellation.
func (f *Formatter) Unsubscribe(email string, at time.Time) (string, error) {
	return render(f.unsubscribe, pongo2.Context{
		"email":       email,
		"received_at": formatTime(at),
	})
}

// PaymentView resolves every field the payment template prints, substituting
// placeholders for absent values.
func PaymentView(r model.PaymentRecord, source string) pongo2.Context {
	na := constants.PlaceholderNA
	amount := r.Get(model.FieldPayAmount)
	paid := r.Or(model.FieldActuallyPaid, amount)
	order := r.Get(model.FieldOrderID)
	if order == "" {
		order = r.Or(model.FieldInvoiceID, na)
	}
	email := r.Email()
	if email == "" {
		email = constants.PlaceholderNoEmail
	}
	if source == "" {
		source = na
	}
	return pongo2.Context{
		"source":        source,
		"payment_id":    r.PaymentID(),
		"invoice_id":    r.Or(model.FieldInvoiceID, na),
		"status":        r.Status(),
		"amount":        formatAmount(amount),
		"actually_paid": formatAmount(paid),
		"shortfall":     shortfall(amount, paid),
		"currency":      strings.ToUpper(r.Or(model.FieldPayCurrency, na)),
		"pay_address":   r.Or(model.FieldPayAddress, na),
		"order":         order,
		"email":         email,
		"created_at":    r.Or(model.FieldCreatedAt, na),
		"updated_at":    r.Or(model.FieldUpdatedAt, na),
	}
}

func render(tpl *pongo2.Template, ctx pongo2.Context) (string, error) {
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func formatAmount(s string) string {
	if s == "" {
		return constants.PlaceholderNA
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.String()
}

// shortfall is pay_amount minus actually_paid when the payer sent too little.
func shortfall(amount, paid string) string {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return ""
	}
	p, err := decimal.NewFromString(paid)
	if err != nil {
		return ""
	}
	if !p.LessThan(a) {
		return ""
	}
	return a.Sub(p).String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
