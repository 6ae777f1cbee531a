package ulogtest

import (
	"strings"
	"sync"

	"go.jacobcolvin.com/ulog"
)

// Record is one delivery seen by a [Recorder].
type Record struct {
	Source  ulog.Source
	Message string
	Level   ulog.Level
}

// Recorder is a [ulog.Subscriber] that keeps a copy of every message it
// receives. Safe for concurrent use.
//
// Create instances with [NewRecorder].
type Recorder struct {
	records []Record
	mu      sync.Mutex
}

// NewRecorder creates an empty [Recorder].
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Log copies msg and appends it to the recorded list.
func (r *Recorder) Log(level ulog.Level, src ulog.Source, msg []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, Record{
		Level:   level,
		Source:  src,
		Message: string(msg),
	})
}

// Records returns a copy of everything recorded so far, oldest first.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)

	return out
}

// Messages returns the recorded message texts, oldest first.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Message)
	}

	return out
}

// Len returns the number of recorded deliveries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
}

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := ulogtest.JoinLF(
//		"[INFO] one",
//		"[WARNING] two",
//	) // -> "[INFO] one\n[WARNING] two"
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}
