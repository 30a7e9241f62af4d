package verbose

import (
	"io"
	"sync"
)

// A Sink is an ordered text destination shared by one or more tracers. Each
// call to Write hands one complete line or block to the underlying writer
// while holding the lock, so blocks from different workers never interleave
// inside each other.
type Sink struct {
	lock sync.Mutex
	w    io.Writer
}

// NewSink creates a Sink that writes into w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write writes one block atomically.
func (s *Sink) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.w.Write(p)
}

// WriteString writes one block atomically.
func (s *Sink) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}
