package report

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

var (
	_ Sink = (*WriterSink)(nil)
	_ Sink = (*SerialSink)(nil)
	_ Sink = (*FakeSink)(nil)
	_ Sink = Tee(nil)
	_ Sink = LogSink{}
	_ Sink = SinkFunc(nil)
)

func TestWriterSinkTerminator(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	s.Emit("<18,20,1,0003>")
	s.Emit("<18,20,1,0004>")

	want := "<18,20,1,0003>\n\r<18,20,1,0004>\n\r"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("port gone")
}

func TestWriterSinkErrorsAreCountedNotFatal(t *testing.T) {
	var logBuf bytes.Buffer
	log.SetOutput(&logBuf)
	defer log.SetOutput(os.Stderr)

	w := &failingWriter{}
	s := NewWriterSink(w)

	s.Emit("a")
	s.Emit("b")
	s.Emit("c")

	if s.Errors() != 3 {
		t.Errorf("errors: got %d, want 3", s.Errors())
	}
	if n := strings.Count(logBuf.String(), "report: write failed"); n != 1 {
		t.Errorf("expected one log line for a run of failures, got %d", n)
	}
}

func TestTeeFansOutInOrder(t *testing.T) {
	var order []string
	a := SinkFunc(func(l string) { order = append(order, "a:"+l) })
	b := NewFakeSink()
	c := SinkFunc(func(l string) { order = append(order, "c:"+l) })

	Tee{a, b, c}.Emit("x")

	if len(order) != 2 || order[0] != "a:x" || order[1] != "c:x" {
		t.Errorf("order: got %v", order)
	}
	if got := b.Lines(); len(got) != 1 || got[0] != "x" {
		t.Errorf("fake sink: got %v", got)
	}
}

func TestEmitf(t *testing.T) {
	f := NewFakeSink()
	Emitf(f, "Detected TMP%s I2C address: %x", "116", 0x49)

	if got := f.Lines(); len(got) != 1 || got[0] != "Detected TMP116 I2C address: 49" {
		t.Errorf("got %v", got)
	}

	f.Reset()
	if len(f.Lines()) != 0 {
		t.Error("Reset should clear lines")
	}
}
