package train

import (
	"fmt"
	"sync"
)

// Diagnostics receives the non-fatal reports a Train produces: chain
// creation, rejected edges and cycle warnings. *zap.SugaredLogger satisfies
// it.
type Diagnostics interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type nopDiagnostics struct{}

func (nopDiagnostics) Infof(string, ...interface{}) {}
func (nopDiagnostics) Warnf(string, ...interface{}) {}

// Level tags a recorded diagnostic.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a Diagnostics that keeps every message, optionally forwarding
// to another sink.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	next    Diagnostics
}

// NewRecorder returns a Recorder forwarding to next, which may be nil.
func NewRecorder(next Diagnostics) *Recorder {
	if next == nil {
		next = nopDiagnostics{}
	}
	return &Recorder{next: next}
}

func (r *Recorder) Infof(template string, args ...interface{}) {
	r.record(LevelInfo, fmt.Sprintf(template, args...))
	r.next.Infof(template, args...)
}

func (r *Recorder) Warnf(template string, args ...interface{}) {
	r.record(LevelWarn, fmt.Sprintf(template, args...))
	r.next.Warnf(template, args...)
}

func (r *Recorder) record(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

// Entries returns every message recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Warnings returns the warning messages recorded so far.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == LevelWarn {
			out = append(out, e.Message)
		}
	}
	return out
}

// Reset drops all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
