package audio

import "sync"

// ReadySignal is a set-once flag shared between the transcription
// pipeline (which sets it when the model is loaded) and the distributor
// (which discards transcription bytes until it is set).
type ReadySignal struct {
	once sync.Once
	ch   chan struct{}
}

// NewReadySignal returns an unset signal.
func NewReadySignal() *ReadySignal {
	return &ReadySignal{ch: make(chan struct{})}
}

// Set marks the signal. Subsequent calls are no-ops.
func (r *ReadySignal) Set() {
	r.once.Do(func() { close(r.ch) })
}

// IsSet reports whether Set has been called.
func (r *ReadySignal) IsSet() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the signal is set.
func (r *ReadySignal) Done() <-chan struct{} {
	return r.ch
}
