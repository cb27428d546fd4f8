package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/core"
	"github.com/awantoch/formrelay/forms"
	"github.com/awantoch/formrelay/ingest"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	mu    sync.Mutex
	sent  []string
	err   error
	panic bool
}

func (n *stubNotifier) Notify(_ context.Context, content string) error {
	if n.panic {
		panic("notifier exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, content)
	return n.err
}

func (n *stubNotifier) Enabled() bool { return true }

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type memStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *memStore) Put(_ context.Context, _ []byte, _ string, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if s.err != nil {
		return "", s.err
	}
	return "mem://" + key, nil
}

func (s *memStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

type testServer struct {
	notifier *stubNotifier
	store    *memStore
	handler  http.Handler
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	ts := &testServer{notifier: &stubNotifier{}, store: &memStore{}}
	cfg := config.Default()
	cfg.IPN.Secret = secret
	now := func() time.Time { return time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC) }

	in, err := ingest.New(ingest.Options{
		Verifier:        ingest.NewVerifier(secret, cfg.IPN.SignatureHeader),
		RequiredFields:  cfg.IPN.RequiredFields,
		SuccessStatuses: cfg.IPN.SuccessStatuses,
		Source:          cfg.IPN.Source,
		PaymentsPrefix:  cfg.Archive.PaymentsPrefix,
		Notifier:        ts.notifier,
		Archive:         ts.store,
		Now:             now,
	})
	require.NoError(t, err)
	fs, err := forms.New(forms.Options{
		Notifier:     ts.notifier,
		Archive:      ts.store,
		EmailsPrefix: cfg.Archive.EmailsPrefix,
		Now:          now,
	})
	require.NoError(t, err)

	ts.handler = NewMux(&core.Services{Config: cfg, Ingestor: in, Forms: fs})
	return ts
}

func (ts *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
