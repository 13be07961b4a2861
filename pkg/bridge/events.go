package bridge

// Event is the closed family of events a send operation yields.
type Event interface {
	Type() string
}

// DeltaEvent carries net-new agent text produced by the reconciler.
type DeltaEvent struct {
	Text string
}

func (DeltaEvent) Type() string { return "delta" }

// DoneEvent terminates a successful send.
type DoneEvent struct {
	Text      string // full reconciled agent text for the turn
	TaskID    string
	ContextID string
	Finalized bool // server marked the task final before the stream closed
}

func (DoneEvent) Type() string { return "done" }

// ErrorEvent terminates a failed send.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) Type() string { return "error" }

// SendResult is the final outcome of one send operation.
type SendResult struct {
	Text      string
	TaskID    string
	ContextID string
	Err       error
}

func newSendStream() *EventStream[Event, SendResult] {
	return NewEventStream[Event, SendResult](
		func(e Event) bool {
			t := e.Type()
			return t == "done" || t == "error"
		},
		func(e Event) SendResult {
			switch ev := e.(type) {
			case DoneEvent:
				return SendResult{Text: ev.Text, TaskID: ev.TaskID, ContextID: ev.ContextID}
			case ErrorEvent:
				return SendResult{Err: ev.Err}
			}
			return SendResult{}
		},
	)
}
