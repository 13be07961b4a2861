package bridge

import "github.com/skyward/skyguide/pkg/a2a"

// SessionTracker holds the server-assigned identifiers for the current
// conversation. Ids are only ever copied from classified server results,
// never invented locally; the server is authoritative and may rotate the
// task id mid-conversation.
type SessionTracker struct {
	TaskID      string
	ContextID   string
	ContextSent bool // the one-time initial context has already gone out
}

// Observe updates the tracker from a classified result. Every result kind
// that carries identifiers overwrites them.
func (t *SessionTracker) Observe(res a2a.Result) {
	switch res.Kind {
	case a2a.KindStatusUpdate:
		t.setIDs(res.StatusUpdate.TaskID, res.StatusUpdate.ContextID)
	case a2a.KindTask:
		t.setIDs(res.Task.ID, res.Task.ContextID)
	case a2a.KindMessage:
		t.setIDs(res.Message.TaskID, res.Message.ContextID)
	}
}

func (t *SessionTracker) setIDs(taskID, contextID string) {
	if taskID != "" {
		t.TaskID = taskID
	}
	if contextID != "" {
		t.ContextID = contextID
	}
}
