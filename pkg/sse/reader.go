package sse

import "io"

// Reader drives a LineDecoder and Assembler over an io.Reader, yielding one
// event per Next call. After the underlying stream ends cleanly, any buffered
// partial line and in-progress event are flushed before io.EOF is reported.
type Reader struct {
	r     io.Reader
	dec   LineDecoder
	asm   Assembler
	queue []Event
	chunk []byte
	eof   bool
	err   error
}

// NewReader wraps r in an event reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, chunk: make([]byte, 4096)}
}

// Next returns the next event, or io.EOF once the stream is exhausted.
// Read errors other than EOF are returned as-is; events decoded before the
// error are still delivered first.
func (r *Reader) Next() (Event, error) {
	for {
		if len(r.queue) > 0 {
			ev := r.queue[0]
			r.queue = r.queue[1:]
			return ev, nil
		}
		if r.err != nil {
			return Event{}, r.err
		}
		if r.eof {
			return Event{}, io.EOF
		}

		n, err := r.r.Read(r.chunk)
		if n > 0 {
			for _, line := range r.dec.Feed(r.chunk[:n]) {
				if ev, ok := r.asm.Line(line); ok {
					r.queue = append(r.queue, ev)
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				r.eof = true
				if line, ok := r.dec.Flush(); ok {
					if ev, ok := r.asm.Line(line); ok {
						r.queue = append(r.queue, ev)
					}
				}
				if ev, ok := r.asm.Flush(); ok {
					r.queue = append(r.queue, ev)
				}
			} else {
				r.err = err
			}
		}
	}
}
