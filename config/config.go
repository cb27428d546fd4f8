package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/awantoch/formrelay/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Notify  NotifyConfig  `json:"notify" yaml:"notify"`
	IPN     IPNConfig     `json:"ipn" yaml:"ipn"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
	Event   EventConfig   `json:"event" yaml:"event"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Secrets SecretsConfig `json:"secrets" yaml:"secrets"`
}

type HTTPConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// NotifyConfig configures the chat webhook sink. An empty WebhookURL
// disables notifications.
type NotifyConfig struct {
	WebhookURL     string `json:"webhook_url" yaml:"webhook_url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// IPNConfig configures payment notification ingestion. An empty Secret
// disables signature verification.
type IPNConfig struct {
	Secret          string   `json:"secret" yaml:"secret"`
	SignatureHeader string   `json:"signature_header" yaml:"signature_header"`
	RequiredFields  []string `json:"required_fields" yaml:"required_fields"`
	SuccessStatuses []string `json:"success_statuses" yaml:"success_statuses"`
	Source          string   `json:"source" yaml:"source"`
}

// ArchiveConfig selects and configures the archive store.
type ArchiveConfig struct {
	Driver         string `json:"driver" yaml:"driver"`
	Bucket         string `json:"bucket" yaml:"bucket"`
	Region         string `json:"region" yaml:"region"`
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey      string `json:"access_key" yaml:"access_key"`
	SecretKey      string `json:"secret_key" yaml:"secret_key"`
	Directory      string `json:"directory,omitempty" yaml:"directory,omitempty"`
	DSN            string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	PaymentsPrefix string `json:"payments_prefix" yaml:"payments_prefix"`
	EmailsPrefix   string `json:"emails_prefix" yaml:"emails_prefix"`
}

// HasCredentials reports whether the S3 driver has everything it needs.
func (a ArchiveConfig) HasCredentials() bool {
	return a.AccessKey != "" && a.SecretKey != "" && a.Bucket != "" && a.Region != ""
}

type EventConfig struct {
	Driver    string `json:"driver" yaml:"driver"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	ClusterID string `json:"cluster_id,omitempty" yaml:"cluster_id,omitempty"`
	ClientID  string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
}

type TracingConfig struct {
	Exporter    string `json:"exporter" yaml:"exporter"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
}

// SecretsConfig selects where credentials left blank in the file and the
// environment are looked up.
type SecretsConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// LoadConfig reads a JSON or YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path (a missing file means defaults), applies the environment
// overlay and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any environment variables that are set.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Notify.WebhookURL, constants.EnvWebhookURL)
	setString(&cfg.IPN.Secret, constants.EnvIPNSecret)
	setString(&cfg.IPN.SignatureHeader, constants.EnvIPNSignatureHeader)
	setList(&cfg.IPN.RequiredFields, constants.EnvIPNRequiredFields)
	setList(&cfg.IPN.SuccessStatuses, constants.EnvIPNSuccessStatuses)
	setString(&cfg.Archive.Driver, constants.EnvArchiveDriver)
	setString(&cfg.Archive.AccessKey, constants.EnvArchiveKey)
	setString(&cfg.Archive.SecretKey, constants.EnvArchiveSecret)
	setString(&cfg.Archive.Bucket, constants.EnvArchiveBucket)
	setString(&cfg.Archive.Region, constants.EnvArchiveRegion)
	setString(&cfg.Archive.Endpoint, constants.EnvArchiveEndpoint)
	setString(&cfg.Archive.Directory, constants.EnvArchiveDir)
	setString(&cfg.Archive.DSN, constants.EnvArchiveDSN)
	setString(&cfg.Archive.PaymentsPrefix, constants.EnvArchivePrefix)
	setString(&cfg.Event.Driver, constants.EnvEventDriver)
	setString(&cfg.Event.URL, constants.EnvNATSURL)
	setString(&cfg.Event.ClusterID, constants.EnvNATSClusterID)
	setString(&cfg.Tracing.Exporter, constants.EnvOTelExporter)
	setString(&cfg.Tracing.Endpoint, constants.EnvOTelEndpoint)
	setString(&cfg.Secrets.Driver, constants.EnvSecretsDriver)
	setString(&cfg.Secrets.Region, constants.EnvSecretsRegion)
	setString(&cfg.Secrets.Prefix, constants.EnvSecretsPrefix)
	if v, ok := os.LookupEnv(constants.EnvPort); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if os.Getenv(constants.EnvDebug) != "" {
		cfg.Log.Level = "debug"
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if list := SplitList(v); len(list) > 0 {
		*dst = list
	}
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Redacted returns a copy of cfg with secrets masked, for printing.
func (c *Config) Redacted() *Config {
	out := *c
	out.IPN.RequiredFields = append([]string(nil), c.IPN.RequiredFields...)
	out.IPN.SuccessStatuses = append([]string(nil), c.IPN.SuccessStatuses...)
	out.IPN.Secret = mask(c.IPN.Secret)
	out.Archive.AccessKey = mask(c.Archive.AccessKey)
	out.Archive.SecretKey = mask(c.Archive.SecretKey)
	out.Archive.DSN = mask(c.Archive.DSN)
	if c.Notify.WebhookURL != "" {
		// chat webhook keys live in the query string
		if i := strings.Index(c.Notify.WebhookURL, "?"); i >= 0 {
			out.Notify.WebhookURL = c.Notify.WebhookURL[:i] + "?***"
		}
	}
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
