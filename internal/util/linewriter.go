package util

import "bytes"

// LineWriter is an io.Writer that invokes a callback once per line as data
// streams in. Both LF and CR are treated as line terminators, since git
// rewrites its progress lines in place with carriage returns.
type LineWriter struct {
	fn  func(string)
	buf bytes.Buffer
}

// NewLineWriter returns a writer that calls fn for each completed line.
func NewLineWriter(fn func(string)) *LineWriter {
	return &LineWriter{fn: fn}
}

// Write buffers p and emits any completed lines.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			break
		}
		line := string(data[:i])
		w.buf.Next(i + 1)
		if line != "" {
			w.fn(line)
		}
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *LineWriter) Flush() {
	if w.buf.Len() > 0 {
		w.fn(w.buf.String())
		w.buf.Reset()
	}
}
