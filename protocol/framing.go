package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// DefaultMaxMessageBytes bounds one framed message. A peer that sends a
// longer line is treated as a protocol failure and disconnected.
const DefaultMaxMessageBytes = 64 * 1024

// Reader reads newline-delimited messages from a byte stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r with a frame scanner limited to maxBytes per message.
// A maxBytes of 0 uses DefaultMaxMessageBytes.
func NewReader(r io.Reader, maxBytes int) *Reader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMessageBytes
	}
	// The scanner's token limit is the larger of max and the initial
	// buffer capacity, so the buffer must not exceed maxBytes.
	initial := 4096
	if maxBytes < initial {
		initial = maxBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initial), maxBytes)
	return &Reader{scanner: scanner}
}

// Next blocks until one complete frame arrives and returns its payload
// without the delimiter. It returns io.EOF when the stream ends cleanly
// and the underlying read error otherwise. Empty lines are skipped so a
// peer that double-writes delimiters does not produce phantom messages.
func (r *Reader) Next() ([]byte, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// The scanner reuses its buffer; hand out a copy.
		payload := make([]byte, len(line))
		copy(payload, line)
		return payload, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Writer frames outbound messages onto a byte stream.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes msg and sends it as one delimited frame in a single
// underlying write.
func (w *Writer) Write(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	return w.WriteRaw(data)
}

// WriteRaw frames an already-encoded payload. The payload must not
// contain a newline.
func (w *Writer) WriteRaw(data []byte) error {
	if bytes.IndexByte(data, '\n') >= 0 {
		return fmt.Errorf("payload contains frame delimiter")
	}
	framed := make([]byte, 0, len(data)+1)
	framed = append(framed, data...)
	framed = append(framed, '\n')
	if _, err := w.w.Write(framed); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
