package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/awantoch/formrelay/model"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
	disabled bool
}

func (f *fakeNotifier) Notify(_ context.Context, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
	return f.err
}

func (f *fakeNotifier) Enabled() bool { return !f.disabled }

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	keys    []string
	err     error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) Put(_ context.Context, data []byte, _ string, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if s.err != nil {
		return "", s.err
	}
	s.objects[key] = data
	return "mem://" + key, nil
}

func (s *fakeStore) Get(_ context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.objects {
		if "mem://"+k == url {
			return v, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

type fakeHook struct {
	records []model.PaymentRecord
	emails  []string
	err     error
	panics  bool
}

func (h *fakeHook) PaymentSucceeded(_ context.Context, record model.PaymentRecord, email string) error {
	if h.panics {
		panic("hook exploded")
	}
	h.records = append(h.records, record)
	h.emails = append(h.emails, email)
	return h.err
}
