package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory SessionStore for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*PersistedSession
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*PersistedSession)}
}

func cloneSession(s *PersistedSession) *PersistedSession {
	out := *s
	out.TaskIDs = append([]string(nil), s.TaskIDs...)
	return &out
}

// Get returns the session with the given local id, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, localID string) (*PersistedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[localID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(sess), nil
}

// Put inserts or replaces a session record.
func (m *MemoryStore) Put(_ context.Context, sess *PersistedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.LocalID] = cloneSession(sess)
	return nil
}

// QueryByAnalysisID returns the session linked to an analysis run.
func (m *MemoryStore) QueryByAnalysisID(_ context.Context, analysisID string) (*PersistedSession, error) {
	if analysisID == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *PersistedSession
	for _, sess := range m.sessions {
		if sess.AnalysisID != analysisID {
			continue
		}
		if latest == nil || sess.UpdatedAt.After(latest.UpdatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneSession(latest), nil
}

// QueryLatestMain returns the most recently updated non-analysis session.
func (m *MemoryStore) QueryLatestMain(_ context.Context) (*PersistedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *PersistedSession
	for _, sess := range m.sessions {
		if sess.AnalysisID != "" {
			continue
		}
		if latest == nil || sess.UpdatedAt.After(latest.UpdatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneSession(latest), nil
}
