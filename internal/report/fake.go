package report

import "sync"

// FakeSink records emitted lines for test assertions.
type FakeSink struct {
	mu    sync.Mutex
	lines []string
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// Emit records the line.
func (f *FakeSink) Emit(line string) {
	f.mu.Lock()
	f.lines = append(f.lines, line)
	f.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (f *FakeSink) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

// Reset clears recorded lines.
func (f *FakeSink) Reset() {
	f.mu.Lock()
	f.lines = nil
	f.mu.Unlock()
}
