package a2a

import "encoding/json"

// ResultKind tags a classified server result.
type ResultKind int

const (
	KindUnclassified ResultKind = iota
	KindStatusUpdate
	KindTask
	KindMessage
)

func (k ResultKind) String() string {
	switch k {
	case KindStatusUpdate:
		return "status-update"
	case KindTask:
		return "task"
	case KindMessage:
		return "message"
	default:
		return "unclassified"
	}
}

// Result is the closed tagged variant a raw payload classifies into. Exactly
// one of the pointer fields is set for a classified kind; none for
// KindUnclassified.
type Result struct {
	Kind         ResultKind
	StatusUpdate *StatusUpdate
	Task         *Task
	Message      *Message
}

// Classify inspects an untyped decoded payload and tags it. Rules, in order:
// a "kind" of "status-update" wins; a payload with both "status" and "id" is
// a task snapshot; a payload with both "role" and "parts" is a bare message;
// anything else is unclassified. Classify never fails: shapes that do not
// decode cleanly fall through to unclassified.
func Classify(raw json.RawMessage) Result {
	if len(raw) == 0 {
		return Result{Kind: KindUnclassified}
	}

	var probe struct {
		Kind   string          `json:"kind"`
		ID     string          `json:"id"`
		Status json.RawMessage `json:"status"`
		Role   string          `json:"role"`
		Parts  json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Result{Kind: KindUnclassified}
	}

	switch {
	case probe.Kind == "status-update":
		var update StatusUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			return Result{Kind: KindUnclassified}
		}
		return Result{Kind: KindStatusUpdate, StatusUpdate: &update}

	case probe.ID != "" && len(probe.Status) > 0:
		var task Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return Result{Kind: KindUnclassified}
		}
		return Result{Kind: KindTask, Task: &task}

	case probe.Role != "" && len(probe.Parts) > 0:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return Result{Kind: KindUnclassified}
		}
		return Result{Kind: KindMessage, Message: &msg}
	}

	return Result{Kind: KindUnclassified}
}
