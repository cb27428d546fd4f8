package constants

// Configuration Files
const (
	ConfigFileName = "formrelay.config.json"
	ServiceName    = "formrelay"
)

// Environment Variables
const (
	EnvDebug              = "FORMRELAY_DEBUG"
	EnvConfigPath         = "FORMRELAY_CONFIG"
	EnvWebhookURL         = "WECHAT_WEBHOOK_URL"
	EnvIPNSecret          = "NOWPAYMENTS_IPN_SECRET"
	EnvIPNSignatureHeader = "IPN_SIGNATURE_HEADER"
	EnvIPNRequiredFields  = "IPN_REQUIRED_FIELDS"
	EnvIPNSuccessStatuses = "IPN_SUCCESS_STATUSES"
	EnvArchiveDriver      = "ARCHIVE_DRIVER"
	EnvArchiveKey         = "COS_KEY"
	EnvArchiveSecret      = "COS_SECRET"
	EnvArchiveBucket      = "COS_BUCKET"
	EnvArchiveRegion      = "COS_REGION"
	EnvArchiveEndpoint    = "ARCHIVE_ENDPOINT"
	EnvArchiveDir         = "ARCHIVE_DIR"
	EnvArchiveDSN         = "ARCHIVE_DSN"
	EnvArchivePrefix      = "ARCHIVE_PREFIX"
	EnvEventDriver        = "EVENT_DRIVER"
	EnvNATSURL            = "NATS_URL"
	EnvNATSClusterID      = "NATS_CLUSTER_ID"
	EnvOTelExporter       = "OTEL_EXPORTER"
	EnvOTelEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvPort               = "PORT"
	EnvSecretsDriver      = "SECRETS_DRIVER"
	EnvSecretsRegion      = "SECRETS_REGION"
	EnvSecretsPrefix      = "SECRETS_PREFIX"
)

// Archive Drivers
const (
	ArchiveDriverNone       = "none"
	ArchiveDriverS3         = "s3"
	ArchiveDriverFilesystem = "filesystem"
	ArchiveDriverSQLite     = "sqlite"
	ArchiveDriverPostgres   = "postgres"
)

// Secrets Drivers
const (
	SecretsDriverEnv = "env"
	SecretsDriverAWS = "aws"
)

// Event Drivers
const (
	EventDriverMemory = "memory"
	EventDriverNATS   = "nats"
)

// Trace Exporters
const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
	TraceExporterOTLP   = "otlp"
)

// Event Topics
const (
	TopicPaymentSucceeded = "payment.succeeded"
)
