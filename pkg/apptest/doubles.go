package apptest

import "sync"

// RecordingSink records every snapshot pushed to it. It satisfies
// viewstate.Sink[R].
type RecordingSink[R any] struct {
	mu        sync.Mutex
	snapshots []R
}

func NewRecordingSink[R any]() *RecordingSink[R] {
	return &RecordingSink[R]{}
}

func (s *RecordingSink[R]) HandleNotify(root R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, root)
}

// Snapshots returns a copy of everything received so far.
func (s *RecordingSink[R]) Snapshots() []R {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]R, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

func (s *RecordingSink[R]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// Last returns the most recent snapshot.
func (s *RecordingSink[R]) Last() (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		var zero R
		return zero, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// RecordingErrors records errors reported by view-models. It satisfies
// app.ErrorSink.
type RecordingErrors struct {
	mu     sync.Mutex
	errors []error
}

func NewRecordingErrors() *RecordingErrors {
	return &RecordingErrors{}
}

func (r *RecordingErrors) HandleError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *RecordingErrors) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errors))
	copy(out, r.errors)
	return out
}

// RecordingToast records toast messages.
type RecordingToast struct {
	mu       sync.Mutex
	messages []string
}

func NewRecordingToast() *RecordingToast {
	return &RecordingToast{}
}

func (r *RecordingToast) Show(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *RecordingToast) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}
