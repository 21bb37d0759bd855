package application_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// --- Mock implementations ---

type recordingNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
}

func (r *recordingNotifier) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) all() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

type countingNavigator struct {
	calls atomic.Int32
}

func (n *countingNavigator) ToLogin() {
	n.calls.Add(1)
}

type memoryCredentialStore struct {
	mu      sync.Mutex
	cred    model.Credential
	saves   int
	deletes int
}

func (m *memoryCredentialStore) Load(_ context.Context) (model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred, nil
}

func (m *memoryCredentialStore) Save(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
	m.saves++
	return nil
}

func (m *memoryCredentialStore) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = model.Credential{}
	m.deletes++
	return nil
}

type mockAuthAPI struct {
	login func(ctx context.Context, email, password string) (model.LoginResult, error)
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	return m.login(ctx, email, password)
}
