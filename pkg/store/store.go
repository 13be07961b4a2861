package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no session matches a lookup.
var ErrNotFound = errors.New("session not found")

// PersistedSession is the durable record of one logical conversation.
// TaskIDs accumulates every server-assigned task identifier, oldest first;
// it is the only anchor needed to rebuild the transcript after a restart —
// stored text is never trusted as ground truth.
type PersistedSession struct {
	LocalID    string    `json:"localId"`
	ContextID  string    `json:"contextId,omitempty"`
	Title      string    `json:"title,omitempty"`
	AnalysisID string    `json:"analysisId,omitempty"`
	TaskIDs    []string  `json:"taskIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewSession creates a fresh session record with a generated local id.
func NewSession(title string) *PersistedSession {
	now := time.Now().UTC()
	return &PersistedSession{
		LocalID:   uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SessionStore is the persistence collaborator of the bridge. The bridge
// never touches it directly; the CLI persists through the bridge's
// post-operation hook.
type SessionStore interface {
	// Get returns the session with the given local id, or ErrNotFound.
	Get(ctx context.Context, localID string) (*PersistedSession, error)
	// Put inserts or replaces a session record.
	Put(ctx context.Context, sess *PersistedSession) error
	// QueryByAnalysisID returns the session linked to an analysis run,
	// or ErrNotFound.
	QueryByAnalysisID(ctx context.Context, analysisID string) (*PersistedSession, error)
	// QueryLatestMain returns the most recently updated session that is not
	// linked to an analysis run, or ErrNotFound.
	QueryLatestMain(ctx context.Context) (*PersistedSession, error)
}
