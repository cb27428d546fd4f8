package config

import (
	"time"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/model"
)

const (
	// DefaultNotifyTimeout bounds a single webhook call.
	DefaultNotifyTimeout = 10 * time.Second
	// DefaultPaymentsPrefix is the archive key prefix for payment records.
	DefaultPaymentsPrefix = "nowpayments/payments"
	// DefaultEmailsPrefix is the archive key prefix for unsubscribe records.
	DefaultEmailsPrefix = "grayscaleinsight/emails"
	// DefaultSource tags archived payment records.
	DefaultSource = "nowpayments"
	// DefaultBlobDir is the default directory for the filesystem archive.
	DefaultBlobDir = ".formrelay/archive"
)

// DefaultRequiredFields is the minimal IPN contract.
var DefaultRequiredFields = []string{model.FieldPaymentID}

// StrictRequiredFields is the richer field set some processors guarantee.
var StrictRequiredFields = []string{
	model.FieldPaymentID,
	model.FieldInvoiceID,
	model.FieldPaymentStatus,
	model.FieldPayAmount,
	model.FieldPayCurrency,
}

// DefaultSuccessStatuses trigger the payment success hook.
var DefaultSuccessStatuses = []string{"finished", "confirmed", "success"}

// Default returns a Config with every default filled in.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Host: constants.DefaultHTTPHost, Port: constants.DefaultHTTPPort},
		Log:  LogConfig{Level: "info"},
		Notify: NotifyConfig{
			TimeoutSeconds: int(DefaultNotifyTimeout / time.Second),
		},
		IPN: IPNConfig{
			SignatureHeader: constants.DefaultSignatureHeader,
			RequiredFields:  append([]string(nil), DefaultRequiredFields...),
			SuccessStatuses: append([]string(nil), DefaultSuccessStatuses...),
			Source:          DefaultSource,
		},
		Archive: ArchiveConfig{
			Driver:         constants.ArchiveDriverS3,
			Directory:      DefaultBlobDir,
			PaymentsPrefix: DefaultPaymentsPrefix,
			EmailsPrefix:   DefaultEmailsPrefix,
		},
		Event:   EventConfig{Driver: constants.EventDriverMemory, ClientID: constants.ServiceName},
		Tracing: TracingConfig{Exporter: constants.TraceExporterNone, ServiceName: constants.ServiceName},
		Secrets: SecretsConfig{Driver: constants.SecretsDriverEnv},
	}
}

// NotifyTimeout returns the webhook timeout, falling back to the default.
func (n NotifyConfig) NotifyTimeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return DefaultNotifyTimeout
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}
