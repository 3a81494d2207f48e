package telemetry

import (
	"sync"
	"sync/atomic"

	"go.trai.ch/unitcache/internal/core/ports"
)

// LogBufferSize is how many output batches may wait for the renderer.
const LogBufferSize = 4096

// active is the forwarder installed by Setup, if any.
var active atomic.Pointer[forwarder]

type logEntry struct {
	spanID string
	data   []byte
	// ack is closed once every entry queued before it was delivered.
	ack chan struct{}
}

// forwarder hands span output to a renderer from a single goroutine, so a
// slow renderer never blocks a load command.
type forwarder struct {
	renderer ports.Renderer

	mu     sync.RWMutex
	ch     chan logEntry
	closed bool
	done   chan struct{}
}

func newForwarder(renderer ports.Renderer) *forwarder {
	f := &forwarder{
		renderer: renderer,
		ch:       make(chan logEntry, LogBufferSize),
		done:     make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *forwarder) run() {
	defer close(f.done)
	for entry := range f.ch {
		if entry.ack != nil {
			close(entry.ack)
			continue
		}
		f.renderer.OnUnitLog(entry.spanID, entry.data)
	}
}

// send queues output for the renderer. Output is dropped when the queue is
// full or the forwarder is closed.
func (f *forwarder) send(spanID string, data []byte) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- logEntry{spanID: spanID, data: data}:
	default:
	}
}

// drain blocks until all queued output reached the renderer.
func (f *forwarder) drain() {
	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return
	}
	ack := make(chan struct{})
	f.ch <- logEntry{ack: ack}
	f.mu.RUnlock()
	<-ack
}

// close stops accepting output and waits until queued output was delivered.
func (f *forwarder) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.ch)
	f.mu.Unlock()
	<-f.done
}
