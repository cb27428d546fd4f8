package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrDisabled is returned by a Notifier with no webhook configured.
var ErrDisabled = errors.New("notifications disabled")

// Notifier delivers a markdown message to a chat sink.
type Notifier interface {
	Notify(ctx context.Context, content string) error
	Enabled() bool
}

// StatusError is an upstream rejection: a non-2xx response, or a 2xx
// response carrying a non-zero errcode.
type StatusError struct {
	StatusCode int
	ErrCode    int
	Body       string
}

func (e *StatusError) Error() string {
	if e.ErrCode != 0 {
		return fmt.Sprintf("webhook rejected message: status %d, errcode %d: %s", e.StatusCode, e.ErrCode, e.Body)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// IsTimeout reports whether err means the sink never answered in time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type markdownBody struct {
	Content string `json:"content"`
}

type markdownMessage struct {
	MsgType  string       `json:"msgtype"`
	Markdown markdownBody `json:"markdown"`
}

type webhookReply struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// WebhookNotifier posts markdown messages to a WeChat Work style group bot.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

var _ Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a notifier for url whose calls are bounded by timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// New returns a WebhookNotifier, or a disabled notifier when url is empty.
func New(url string, timeout time.Duration) Notifier {
	if url == "" {
		logger.Warn(constants.LogNotificationsDisabled)
		return Disabled{}
	}
	return NewWebhookNotifier(url, timeout)
}

func (n *WebhookNotifier) Enabled() bool { return true }

// Notify sends content as a markdown message.
func (n *WebhookNotifier) Notify(ctx context.Context, content string) error {
	b, err := json.Marshal(markdownMessage{MsgType: "markdown", Markdown: markdownBody{Content: content}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("webhook response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	var reply webhookReply
	if err := json.Unmarshal(data, &reply); err == nil && reply.ErrCode != 0 {
		return &StatusError{StatusCode: resp.StatusCode, ErrCode: reply.ErrCode, Body: reply.ErrMsg}
	}
	return nil
}

// Disabled is the Notifier used when no webhook is configured.
type Disabled struct{}

func (Disabled) Notify(context.Context, string) error { return ErrDisabled }
func (Disabled) Enabled() bool                        { return false }
