package bridge

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skyward/skyguide/pkg/a2a"
	"github.com/skyward/skyguide/pkg/logger"
)

// ErrBusy is returned when an operation is started while another one is
// still in flight on the same bridge. The per-send accumulated state is not
// reentrant.
var ErrBusy = errors.New("bridge: operation already in flight")

const historyFetchConcurrency = 4

// Update carries the fields to persist after a completed operation. It is
// delivered through an explicit post-operation hook, exactly once per
// completed send or restore.
type Update struct {
	TaskID    string
	ContextID string
	TaskIDs   []string
	UpdatedAt time.Time
}

// UpdateFunc receives an Update after each completed operation.
type UpdateFunc func(Update)

// Bridge composes the transport, codec, classifier, reconciler, and tracker
// into the two operations the UI consumes: a streaming send and a batch
// history restore.
type Bridge struct {
	client         *a2a.Client
	log            *logger.Logger
	initialContext string
	onUpdate       UpdateFunc

	mu         sync.Mutex
	busy       bool
	cancel     context.CancelFunc
	tracker    SessionTracker
	taskIDs    []string
	transcript []TranscriptEntry
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithInitialContext sets a one-time context string prepended to the very
// first message of a conversation.
func WithInitialContext(text string) Option {
	return func(b *Bridge) { b.initialContext = text }
}

// WithUpdateHook sets the post-operation persistence hook.
func WithUpdateHook(fn UpdateFunc) Option {
	return func(b *Bridge) { b.onUpdate = fn }
}

// WithLogger replaces the bridge logger.
func WithLogger(log *logger.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// New creates a bridge over the given agent client.
func New(client *a2a.Client, opts ...Option) *Bridge {
	b := &Bridge{
		client: client,
		log:    logger.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SendMessage sends one user turn and returns a stream of text deltas. Only
// one operation may be in flight per bridge; a concurrent call fails with
// ErrBusy. The stream terminates when the transport closes or the task is
// finalized by the server.
func (b *Bridge) SendMessage(ctx context.Context, text string, attachments ...a2a.Part) (*EventStream[Event, SendResult], error) {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return nil, ErrBusy
	}
	b.busy = true
	sendCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	contextID := b.tracker.ContextID
	prependContext := !b.tracker.ContextSent && b.initialContext != ""
	b.transcript = mergeTranscript(b.transcript, a2a.RoleUser, text)
	b.mu.Unlock()

	outText := text
	if prependContext {
		outText = b.initialContext + "\n\n" + text
	}

	msg := a2a.Message{
		Role:      a2a.RoleUser,
		Kind:      "message",
		MessageID: uuid.NewString(),
		Parts:     append([]a2a.Part{a2a.TextPart(outText)}, attachments...),
		// The previous task may already be finalized, so no taskId goes out:
		// sending only the contextId lets the server allocate a fresh task
		// inside the same conversation instead of rejecting the write.
		ContextID: contextID,
	}

	stream := newSendStream()
	go b.runSend(sendCtx, cancel, msg, stream)
	return stream, nil
}

func (b *Bridge) runSend(ctx context.Context, cancel context.CancelFunc, msg a2a.Message, stream *EventStream[Event, SendResult]) {
	defer func() {
		cancel()
		b.mu.Lock()
		b.busy = false
		b.cancel = nil
		b.mu.Unlock()
	}()

	results, err := b.client.Stream(ctx, msg)
	if err != nil {
		stream.Push(ErrorEvent{Err: err})
		return
	}
	defer results.Close()

	var rec TextReconciler
	finalized := false

	for {
		res, err := results.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			stream.Push(ErrorEvent{Err: err})
			return
		}
		if res.Kind == a2a.KindUnclassified {
			b.log.Debug("dropping unclassified result")
			continue
		}

		b.mu.Lock()
		b.tracker.Observe(res)
		b.mu.Unlock()

		candidate, final := agentText(res)
		if delta, ok := rec.Apply(candidate); ok {
			stream.Push(DeltaEvent{Text: delta})
		}
		if final {
			finalized = true
			break
		}
	}

	b.mu.Lock()
	b.tracker.ContextSent = true
	taskID := b.tracker.TaskID
	contextID := b.tracker.ContextID
	if taskID != "" && !containsID(b.taskIDs, taskID) {
		b.taskIDs = append(b.taskIDs, taskID)
	}
	if turn := rec.Accumulated(); turn != "" {
		b.transcript = mergeTranscript(b.transcript, a2a.RoleAgent, turn)
	}
	taskIDs := append([]string(nil), b.taskIDs...)
	hook := b.onUpdate
	b.mu.Unlock()

	if hook != nil {
		hook(Update{TaskID: taskID, ContextID: contextID, TaskIDs: taskIDs, UpdatedAt: time.Now()})
	}
	stream.Push(DoneEvent{Text: rec.Accumulated(), TaskID: taskID, ContextID: contextID, Finalized: finalized})
}

// agentText extracts the agent-authored candidate text from a classified
// result, and whether the result marks the task as finalized. User-role
// echoes never become candidates.
func agentText(res a2a.Result) (string, bool) {
	switch res.Kind {
	case a2a.KindStatusUpdate:
		update := res.StatusUpdate
		final := update.Final || update.Status.Final()
		if m := update.Status.Message; m != nil && m.Role == a2a.RoleAgent {
			return m.Text(), final
		}
		return "", final
	case a2a.KindTask:
		task := res.Task
		final := task.Status.Final()
		if m := task.Status.Message; m != nil && m.Role == a2a.RoleAgent {
			return m.Text(), final
		}
		return "", final
	case a2a.KindMessage:
		if res.Message.Role == a2a.RoleAgent {
			return res.Message.Text(), false
		}
	}
	return "", false
}

// RestoreHistory replays an ordered task-id list (oldest first) against the
// server and replaces the in-memory transcript with the merged result. It
// reports whether at least one task could be fetched; per-task failures are
// skipped. A restored conversation never re-sends the initial context.
func (b *Bridge) RestoreHistory(ctx context.Context, taskIDs []string, contextID string) bool {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		b.log.Warn("restore refused: operation in flight")
		return false
	}
	b.busy = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.busy = false
		b.mu.Unlock()
	}()

	tasks := b.fetchTasks(ctx, taskIDs)

	recovered := false
	for _, task := range tasks {
		if task != nil {
			recovered = true
		}
	}
	transcript := rebuildTranscript(tasks)

	b.mu.Lock()
	b.transcript = transcript
	b.tracker.ContextSent = true
	if contextID != "" {
		b.tracker.ContextID = contextID
	}
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i] != nil {
			b.tracker.setIDs(tasks[i].ID, tasks[i].ContextID)
			break
		}
	}
	b.taskIDs = append([]string(nil), taskIDs...)
	taskID := b.tracker.TaskID
	ctxID := b.tracker.ContextID
	ids := append([]string(nil), b.taskIDs...)
	hook := b.onUpdate
	b.mu.Unlock()

	if recovered && hook != nil {
		hook(Update{TaskID: taskID, ContextID: ctxID, TaskIDs: ids, UpdatedAt: time.Now()})
	}
	return recovered
}

// fetchTasks fetches each task concurrently but keeps results indexed by
// their position, so the merge stays oldest-task-first regardless of
// completion order. Failed fetches leave a nil slot.
func (b *Bridge) fetchTasks(ctx context.Context, taskIDs []string) []*a2a.Task {
	tasks := make([]*a2a.Task, len(taskIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyFetchConcurrency)
	for i, id := range taskIDs {
		i, id := i, id
		g.Go(func() error {
			task, err := b.client.GetTask(gctx, id, 0)
			if err != nil {
				b.log.Warn("history fetch failed for task %s: %v", id, err)
				return nil
			}
			tasks[i] = task
			return nil
		})
	}
	_ = g.Wait()
	return tasks
}

// Transcript returns a copy of the current conversation view.
func (b *Bridge) Transcript() []TranscriptEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]TranscriptEntry(nil), b.transcript...)
}

// Session returns a copy of the current tracker state.
func (b *Bridge) Session() SessionTracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tracker
}

// TaskIDs returns the accumulated task-id list, oldest first.
func (b *Bridge) TaskIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.taskIDs...)
}

// Close aborts any in-flight operation and releases its transport read.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
	}
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
