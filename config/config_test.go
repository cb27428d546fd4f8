package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeTemp(t, "formrelay.config.json", `{
		"http": {"host": "127.0.0.1", "port": 8080},
		"notify": {"webhook_url": "https://hooks.example.com/send?key=k"},
		"ipn": {"secret": "s", "required_fields": ["payment_id", "invoice_id"]},
		"archive": {"driver": "filesystem", "directory": "/tmp/archive"}
	}`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", c.HTTP.Host)
	assert.Equal(t, 8080, c.HTTP.Port)
	assert.Equal(t, "https://hooks.example.com/send?key=k", c.Notify.WebhookURL)
	assert.Equal(t, []string{"payment_id", "invoice_id"}, c.IPN.RequiredFields)
	assert.Equal(t, "filesystem", c.Archive.Driver)
	// untouched sections keep their defaults
	assert.Equal(t, "x-nowpayments-sig", c.IPN.SignatureHeader)
	assert.Equal(t, DefaultSuccessStatuses, c.IPN.SuccessStatuses)
	assert.Equal(t, DefaultPaymentsPrefix, c.Archive.PaymentsPrefix)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeTemp(t, "formrelay.config.yaml", `
notify:
  webhook_url: https://hooks.example.com/send
  timeout_seconds: 3
archive:
  driver: sqlite
  dsn: ":memory:"
event:
  driver: nats
  url: nats://localhost:4222
  cluster_id: test-cluster
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Notify.TimeoutSeconds)
	assert.Equal(t, "sqlite", c.Archive.Driver)
	assert.Equal(t, "nats", c.Event.Driver)
	assert.NoError(t, Validate(c))
}

func TestLoadConfig_FileNotExist(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.json")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"http": `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("WECHAT_WEBHOOK_URL", "https://hooks.example.com/send?key=abc")
	t.Setenv("NOWPAYMENTS_IPN_SECRET", "topsecret")
	t.Setenv("COS_KEY", "ak")
	t.Setenv("COS_SECRET", "sk")
	t.Setenv("COS_BUCKET", "bucket-1")
	t.Setenv("COS_REGION", "ap-singapore")
	t.Setenv("IPN_REQUIRED_FIELDS", "payment_id, pay_amount ,")
	t.Setenv("PORT", "9090")
	t.Setenv("SECRETS_PREFIX", "formrelay/")

	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/send?key=abc", c.Notify.WebhookURL)
	assert.Equal(t, "topsecret", c.IPN.Secret)
	assert.True(t, c.Archive.HasCredentials())
	assert.Equal(t, []string{"payment_id", "pay_amount"}, c.IPN.RequiredFields)
	assert.Equal(t, 9090, c.HTTP.Port)
	assert.Equal(t, "env", c.Secrets.Driver)
	assert.Equal(t, "formrelay/", c.Secrets.Prefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"strict fields", func(c *Config) { c.IPN.RequiredFields = StrictRequiredFields }, false},
		{"required fields without payment_id", func(c *Config) { c.IPN.RequiredFields = []string{"invoice_id"} }, true},
		{"empty required fields", func(c *Config) { c.IPN.RequiredFields = []string{} }, true},
		{"bad webhook url", func(c *Config) { c.Notify.WebhookURL = "ftp://nope" }, true},
		{"unknown archive driver", func(c *Config) { c.Archive.Driver = "gcs" }, true},
		{"sqlite without dsn", func(c *Config) { c.Archive.Driver = "sqlite"; c.Archive.DSN = "" }, true},
		{"nats without url", func(c *Config) { c.Event.Driver = "nats" }, true},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"unknown exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, true},
		{"aws secrets with region", func(c *Config) { c.Secrets = SecretsConfig{Driver: "aws", Region: "us-east-1"} }, false},
		{"aws secrets without region", func(c *Config) { c.Secrets.Driver = "aws" }, true},
		{"unknown secrets driver", func(c *Config) { c.Secrets.Driver = "vault" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := Validate(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	c := Default()
	c.IPN.Secret = "s"
	c.Archive.SecretKey = "sk"
	c.Notify.WebhookURL = "https://hooks.example.com/send?key=abc"
	r := c.Redacted()
	assert.Equal(t, "***", r.IPN.Secret)
	assert.Equal(t, "***", r.Archive.SecretKey)
	assert.Equal(t, "", r.Archive.AccessKey)
	assert.Equal(t, "https://hooks.example.com/send?***", r.Notify.WebhookURL)
	// original untouched
	assert.Equal(t, "s", c.IPN.Secret)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}
