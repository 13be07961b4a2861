package sse

import (
	"io"
	"reflect"
	"strings"
	"testing"
)

func assemble(t *testing.T, lines []string, flush bool) []Event {
	t.Helper()
	var a Assembler
	var events []Event
	for _, line := range lines {
		if ev, ok := a.Line(line); ok {
			events = append(events, ev)
		}
	}
	if flush {
		if ev, ok := a.Flush(); ok {
			events = append(events, ev)
		}
	}
	return events
}

func TestAssemblerBasicEvent(t *testing.T) {
	events := assemble(t, []string{
		"event: task_status_update",
		`data: {"x":1}`,
		"",
	}, false)
	want := []Event{{Name: "task_status_update", Data: `{"x":1}`}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestAssemblerMultipleDataLinesConcatenate(t *testing.T) {
	events := assemble(t, []string{
		"event: chunked",
		"data: {\"text\":",
		"data: \"hi\"}",
		"",
	}, false)
	if len(events) != 1 || events[0].Data != `{"text":"hi"}` {
		t.Fatalf("events = %v", events)
	}
}

func TestAssemblerIgnoresNoise(t *testing.T) {
	events := assemble(t, []string{
		": keep-alive comment",
		"id: 42",
		"retry: 3000",
		"bogus line without meaning",
		"event: ok",
		"data: payload",
		"",
	}, false)
	want := []Event{{Name: "ok", Data: "payload"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestAssemblerDataOnlyEventGetsDefaultName(t *testing.T) {
	events := assemble(t, []string{"data: solo", ""}, false)
	want := []Event{{Name: DefaultEventName, Data: "solo"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestAssemblerEmptyPayloadNotEmitted(t *testing.T) {
	if events := assemble(t, []string{"event: ping", ""}, false); len(events) != 0 {
		t.Errorf("unexpected events %v", events)
	}
}

func TestAssemblerFlushEmitsPendingEvent(t *testing.T) {
	events := assemble(t, []string{"event: last", "data: tail"}, true)
	want := []Event{{Name: "last", Data: "tail"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		events = append(events, ev)
	}
}

// chunkedReader returns its parts one Read call at a time.
type chunkedReader struct {
	parts []string
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.parts) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.parts[0])
	c.parts[0] = c.parts[0][n:]
	if c.parts[0] == "" {
		c.parts = c.parts[1:]
	}
	return n, nil
}

func TestReaderWholeStream(t *testing.T) {
	stream := "event: a\ndata: 1\n\nevent: b\ndata: 2\n\n"
	events := readAll(t, NewReader(strings.NewReader(stream)))
	want := []Event{{Name: "a", Data: "1"}, {Name: "b", Data: "2"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

// A data: line split exactly at its midpoint across chunks still yields the
// complete event once the final chunk arrives.
func TestReaderDataLineSplitMidway(t *testing.T) {
	line := `data: {"result":"half"}`
	mid := len(line) / 2
	r := NewReader(&chunkedReader{parts: []string{
		"event: update\n",
		line[:mid],
		line[mid:] + "\n\n",
	}})
	events := readAll(t, r)
	want := []Event{{Name: "update", Data: `{"result":"half"}`}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

// Any byte-offset split of a well-formed stream produces the same events as
// feeding the stream whole.
func TestReaderBoundaryIndependence(t *testing.T) {
	stream := "event: one\r\ndata: alpha\r\n\r\n: comment\ndata: beta\ndata: gamma\n\n"
	want := readAll(t, NewReader(strings.NewReader(stream)))

	for cut := 0; cut <= len(stream); cut++ {
		r := NewReader(&chunkedReader{parts: []string{stream[:cut], stream[cut:]}})
		got := readAll(t, r)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("cut at %d: events = %v, want %v", cut, got, want)
		}
	}
}

// A stream that ends mid-line with a buffered data: prefix still emits.
func TestReaderFlushesUnterminatedTail(t *testing.T) {
	events := readAll(t, NewReader(strings.NewReader("data: unfinished")))
	want := []Event{{Name: DefaultEventName, Data: "unfinished"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}
