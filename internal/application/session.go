package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// SessionStore holds the signed-in credential for the whole process. Reads
// take an atomic snapshot; writes replace the credential under a write lock so
// no request ever observes a half-updated value.
//
// Only the auth flow and the session teardown write to the store.
type SessionStore struct {
	mu   sync.RWMutex
	cred model.Credential
	gen  uint64

	persistMu sync.Mutex
	persist   driven.CredentialStore // nil when persistence is disabled.
	logger    *slog.Logger
}

// NewSessionStore creates an empty store. persist may be nil, in which case
// the credential only lives in memory.
func NewSessionStore(persist driven.CredentialStore, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{persist: persist, logger: logger}
}

// Load restores a previously persisted credential. It is meant to be called
// once at start-up before any request is issued.
func (s *SessionStore) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	cred, err := s.persist.Load(ctx)
	if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cred = cloneCredential(cred)
	s.gen++
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current credential.
func (s *SessionStore) Snapshot() model.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCredential(s.cred)
}

// SnapshotWithGeneration returns the current credential together with the
// generation it belongs to.
func (s *SessionStore) SnapshotWithGeneration() (model.Credential, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCredential(s.cred), s.gen
}

// Generation returns a counter that changes on every write. Caches scoped to
// one credential lifetime compare generations to detect a switch.
func (s *SessionStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// IsAuthenticated reports whether a token is currently held.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token != ""
}

// Set replaces the credential.
func (s *SessionStore) Set(ctx context.Context, cred model.Credential) {
	s.mu.Lock()
	s.cred = cloneCredential(cred)
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.writeThrough(ctx, gen)
}

// SetWorkspace switches the active workspace, keeping the token.
func (s *SessionStore) SetWorkspace(ctx context.Context, ws *model.Workspace) {
	s.mu.Lock()
	if ws != nil {
		copied := *ws
		ws = &copied
	}
	s.cred.Workspace = ws
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.writeThrough(ctx, gen)
}

// Clear removes the credential. It returns false if the store was already empty.
func (s *SessionStore) Clear(ctx context.Context) bool {
	s.mu.Lock()
	if s.cred.IsZero() {
		s.mu.Unlock()
		return false
	}
	s.cred = model.Credential{}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.writeThrough(ctx, gen)
	return true
}

// ClearIf removes the credential only if it still belongs to generation gen
// and holds a token. A failure observed under an older credential must not
// sign out a session that was established afterwards.
func (s *SessionStore) ClearIf(ctx context.Context, gen uint64) bool {
	s.mu.Lock()
	if s.gen != gen || s.cred.Token == "" {
		s.mu.Unlock()
		return false
	}
	s.cred = model.Credential{}
	s.gen++
	newGen := s.gen
	s.mu.Unlock()

	s.writeThrough(ctx, newGen)
	return true
}

// writeThrough persists the credential of generation gen. A newer write
// supersedes it, so stale generations are skipped.
func (s *SessionStore) writeThrough(ctx context.Context, gen uint64) {
	if s.persist == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	if s.gen != gen {
		s.mu.RUnlock()
		return
	}
	cred := cloneCredential(s.cred)
	s.mu.RUnlock()

	var err error
	if cred.IsZero() {
		err = s.persist.Delete(ctx)
	} else {
		err = s.persist.Save(ctx, cred)
	}
	if err != nil && !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		s.logger.Error("persist credential failed", "error", err)
	}
}

func cloneCredential(c model.Credential) model.Credential {
	if c.Workspace != nil {
		ws := *c.Workspace
		c.Workspace = &ws
	}
	return c
}
