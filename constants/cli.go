package constants

// CLI Commands and Subcommands
const (
	CmdServe    = "serve"
	CmdSign     = "sign"
	CmdConfig   = "config"
	CmdValidate = "validate"
)

// CLI Short Descriptions
const (
	DescRoot           = "Relay form submissions and payment notifications to chat and storage"
	DescServe          = "Start the formrelay HTTP server"
	DescSign           = "Compute the IPN signature for a payload"
	DescConfig         = "Configuration commands"
	DescConfigValidate = "Load, validate and print the effective configuration"
)
