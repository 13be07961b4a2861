package sse

// LineDecoder turns an arbitrarily chunked byte stream into complete text
// lines. Chunks may split a line (or even a \r\n pair) at any byte offset;
// the decoder buffers the unterminated tail until the next chunk arrives.
// \r\n and lone \r are both normalized to a single line break.
type LineDecoder struct {
	buf       []byte
	pendingCR bool
}

// Feed consumes one chunk and returns every line completed by it, in order.
func (d *LineDecoder) Feed(chunk []byte) []string {
	var lines []string
	for _, b := range chunk {
		if d.pendingCR {
			// The previous byte was \r: the line is complete either way,
			// we only needed to know whether to swallow a following \n.
			d.pendingCR = false
			lines = append(lines, string(d.buf))
			d.buf = d.buf[:0]
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\n':
			lines = append(lines, string(d.buf))
			d.buf = d.buf[:0]
		case '\r':
			d.pendingCR = true
		default:
			d.buf = append(d.buf, b)
		}
	}
	return lines
}

// Flush returns the buffered partial line at end of stream, if any.
// A trailing \r counts as a terminator, so its line is returned here too.
func (d *LineDecoder) Flush() (string, bool) {
	if !d.pendingCR && len(d.buf) == 0 {
		return "", false
	}
	d.pendingCR = false
	line := string(d.buf)
	d.buf = nil
	return line, true
}

// Reset discards all buffered state, for reuse across connections.
func (d *LineDecoder) Reset() {
	d.buf = nil
	d.pendingCR = false
}
