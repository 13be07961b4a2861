package sse

import "strings"

// DefaultEventName is used when an event carries data but no event: field.
// Matches the wire default so that data-only producers are still delivered.
const DefaultEventName = "message"

// Event is one logical server-sent event.
type Event struct {
	Name string
	Data string
}

// Assembler groups decoded lines into events. A blank line terminates the
// current event; comment lines and id:/retry: fields are skipped; malformed
// lines never abort the stream. Multiple data: lines concatenate directly
// with no separator, matching the producer's framing.
type Assembler struct {
	name string
	data strings.Builder
}

// Line consumes one decoded line. It returns (event, true) when the line
// completes an event with a non-empty payload.
func (a *Assembler) Line(line string) (Event, bool) {
	if line == "" {
		return a.emit()
	}
	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}
	switch {
	case strings.HasPrefix(line, "event:"):
		a.name = strings.TrimSpace(line[len("event:"):])
	case strings.HasPrefix(line, "data:"):
		a.data.WriteString(strings.TrimSpace(line[len("data:"):]))
	case strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
		// Not load-bearing for this protocol.
	default:
		// Unknown field or malformed line: skip, keep the stream alive.
	}
	return Event{}, false
}

// Flush emits the in-progress event at end of stream, if it has a payload.
// A stream that ends without a trailing blank line still delivers its data.
func (a *Assembler) Flush() (Event, bool) {
	return a.emit()
}

// Reset discards the in-progress event.
func (a *Assembler) Reset() {
	a.name = ""
	a.data.Reset()
}

func (a *Assembler) emit() (Event, bool) {
	if a.data.Len() == 0 {
		a.Reset()
		return Event{}, false
	}
	ev := Event{Name: a.name, Data: a.data.String()}
	if ev.Name == "" {
		ev.Name = DefaultEventName
	}
	a.Reset()
	return ev, true
}
