package constants

// HTTP Response Messages
const (
	ResponseMethodNotAllowed      = "Method Not Allowed"
	ResponseInternalError         = "Internal server error"
	ResponseInvalidSignature      = "Invalid signature"
	ResponseInvalidIPNFormat      = "Invalid IPN data format"
	ResponseUnsupportedIPNFormat  = "Unsupported IPN data format"
	ResponseMissingFieldsPrefix   = "Missing required fields: "
	ResponseIPNProcessed          = "IPN received and processed successfully"
	ResponseFormMissingFields     = "Missing required fields: type and email are required"
	ResponseUnsubscribeMissing    = "Missing required fields: email is required"
	ResponseUnsubscribed          = "Unsubscribe request received. You will no longer receive the newsletter."
	ResponseWebhookServiceError   = "Webhook service error"
	ResponseWebhookTimeout        = "Webhook request timeout"
	ResponseWebhookNoResponse     = "No response received from webhook service"
	ResponseNotificationsDisabled = "Notifications disabled"
	ResponseInvalidRequestBody    = "invalid request body"
)

// Form relay acknowledgements, keyed by request type.
const (
	ResponseSubscribed        = "Subscription request received. Thank you for subscribing!"
	ResponseMonthlyMembership = "Monthly membership request received. Confirmation email will be sent shortly."
	ResponseAnnualMembership  = "Annual membership request received. Confirmation email will be sent shortly."
	ResponsePayDownload       = "Payment and download request received. Payment instructions will be sent to your email."
	ResponseUnknownRequest    = "Request received. We'll process your request shortly."
)

// Error Messages for Logging
const (
	LogFailedEncodeJSON       = "Failed to encode JSON response: %v"
	LogFailedWriteHealthCheck = "Failed to write health check response: %v"
	LogNotificationsDisabled  = "notification webhook URL not set; notifications disabled"
	LogSignatureDisabled      = "IPN secret not set; signature verification disabled (NOT RECOMMENDED)"
	LogArchiveDisabled        = "archive store not configured; records will not be archived"
)

// Placeholders for absent optional fields.
const (
	PlaceholderNA       = "N/A"
	PlaceholderNoEmail  = "not provided"
	PlaceholderNotGiven = "Not provided"
)
