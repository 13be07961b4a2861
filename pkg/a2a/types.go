package a2a

import "strings"

// Message roles on the wire.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Task lifecycle states. A task in a final state is immutable on the server;
// new writes within the same conversation must target the context, not the task.
const (
	StateSubmitted = "submitted"
	StateWorking   = "working"
	StateCompleted = "completed"
	StateCanceled  = "canceled"
	StateFailed    = "failed"
	StateRejected  = "rejected"
)

// Part is one piece of message content: a text fragment or a file reference.
// Kind is the closed discriminator ("text" or "file").
type Part struct {
	Kind string       `json:"kind"`
	Text string       `json:"text,omitempty"`
	File *FileContent `json:"file,omitempty"`
}

// FileContent carries either inline base64 bytes or a linked resource URI,
// never both.
type FileContent struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Kind: "text", Text: text}
}

// InlineFilePart builds a file part with inline base64 bytes.
func InlineFilePart(name, mimeType, b64 string) Part {
	return Part{Kind: "file", File: &FileContent{Name: name, MimeType: mimeType, Bytes: b64}}
}

// LinkedFilePart builds a file part referencing an external resource.
func LinkedFilePart(name, mimeType, uri string) Part {
	return Part{Kind: "file", File: &FileContent{Name: name, MimeType: mimeType, URI: uri}}
}

// Message is the conversational unit exchanged with the agent.
type Message struct {
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	Kind      string `json:"kind,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
}

// Text concatenates the text parts of the message.
func (m *Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Kind == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// TaskStatus is the current lifecycle position of a task, optionally carrying
// an agent message produced at that point.
type TaskStatus struct {
	State   string   `json:"state,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// Final reports whether the status state is terminal.
func (s TaskStatus) Final() bool {
	switch s.State {
	case StateCompleted, StateCanceled, StateFailed, StateRejected:
		return true
	}
	return false
}

// Artifact is a named output attached to a task by the agent.
type Artifact struct {
	ArtifactID string `json:"artifactId,omitempty"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts,omitempty"`
}

// Task is a server-side snapshot: identity, status, artifacts, and optionally
// the stored message history. Read-only to the client.
type Task struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	History   []Message  `json:"history,omitempty"`
}

// StatusUpdate is an incremental notification for a task, not a full snapshot.
type StatusUpdate struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId,omitempty"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final,omitempty"`
}
