package sse

import (
	"reflect"
	"testing"
)

func TestLineDecoderEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lf", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"lone cr", "a\rb\r", []string{"a", "b"}},
		{"mixed", "a\r\nb\nc\r", []string{"a", "b", "c"}},
		{"empty lines", "\n\na\n", []string{"", "", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d LineDecoder
			got := d.Feed([]byte(tt.input))
			if line, ok := d.Flush(); ok {
				got = append(got, line)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineDecoderCRLFSplitAcrossChunks(t *testing.T) {
	var d LineDecoder
	got := d.Feed([]byte("hello\r"))
	got = append(got, d.Feed([]byte("\nworld\n"))...)
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestLineDecoderTrailingPartialFlush(t *testing.T) {
	var d LineDecoder
	if lines := d.Feed([]byte("data: tail")); len(lines) != 0 {
		t.Fatalf("unexpected complete lines %q", lines)
	}
	line, ok := d.Flush()
	if !ok || line != "data: tail" {
		t.Errorf("flush = %q, %v; want %q, true", line, ok, "data: tail")
	}
	if _, ok := d.Flush(); ok {
		t.Error("second flush should be empty")
	}
}

// Splitting the input at every possible byte offset must not change the
// decoded line sequence.
func TestLineDecoderBoundaryIndependence(t *testing.T) {
	input := "first\r\nsecond\nthird\rfourth\n"

	var ref LineDecoder
	want := ref.Feed([]byte(input))

	for cut := 0; cut <= len(input); cut++ {
		var d LineDecoder
		got := d.Feed([]byte(input[:cut]))
		got = append(got, d.Feed([]byte(input[cut:]))...)
		if line, ok := d.Flush(); ok {
			got = append(got, line)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("cut at %d: lines = %q, want %q", cut, got, want)
		}
	}
}
