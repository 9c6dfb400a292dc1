// Package report delivers thermostat report lines to their consumers: the
// UART console, the process log, and (via internal/mqtt) the broker.
package report

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Terminator ends every line written to a byte stream. The console
// consumers expect "\n\r", not "\r\n".
const Terminator = "\n\r"

// Sink receives report lines. Emit must not block for long and never fails
// from the caller's point of view.
type Sink interface {
	Emit(line string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(line string)

// Emit calls f.
func (f SinkFunc) Emit(line string) { f(line) }

// Tee fans a line out to every sink in order.
type Tee []Sink

// Emit forwards line to each sink.
func (t Tee) Emit(line string) {
	for _, s := range t {
		s.Emit(line)
	}
}

// WriterSink writes terminated lines to an io.Writer. Write errors are
// logged once per run of failures and otherwise dropped.
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	failing bool
	errors  int
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes line followed by Terminator.
func (s *WriterSink) Emit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, line+Terminator); err != nil {
		s.errors++
		if !s.failing {
			log.Printf("report: write failed: %v", err)
			s.failing = true
		}
		return
	}
	s.failing = false
}

// Errors returns the number of failed writes.
func (s *WriterSink) Errors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// LogSink writes report lines to the standard logger.
type LogSink struct {
	Prefix string
}

// Emit logs the line.
func (l LogSink) Emit(line string) {
	log.Print(l.Prefix + line)
}

// Emitf formats and emits a line.
func Emitf(s Sink, format string, args ...any) {
	s.Emit(fmt.Sprintf(format, args...))
}
