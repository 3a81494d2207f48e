package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered byte count at which complete lines
	// are handed on without waiting for the delay.
	DefaultSizeLimit = 4096
	// DefaultDelay is the longest buffered output waits, partial lines included.
	DefaultDelay = 50 * time.Millisecond
)

var errBatcherClosed = errors.New("output batcher is closed")

// LineBatcher groups the output of a load command before it reaches the
// renderer. Once the buffer holds sizeLimit bytes, every complete line is
// emitted and a trailing partial line waits for the rest of its bytes; a
// single line longer than the limit is emitted as is. Anything still
// buffered is emitted delay after the first byte arrived, so prompts and
// progress output without a newline are not held back.
// A LineBatcher with nothing buffered holds no timer.
type LineBatcher struct {
	sizeLimit int
	delay     time.Duration
	emit      func([]byte)

	mu     sync.Mutex
	buf    bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewLineBatcher creates a LineBatcher calling emit with each batch.
// Non-positive limits fall back to DefaultSizeLimit and DefaultDelay.
func NewLineBatcher(sizeLimit int, delay time.Duration, emit func([]byte)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &LineBatcher{sizeLimit: sizeLimit, delay: delay, emit: emit}
}

// Write buffers p.
func (b *LineBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	b.buf.Write(p)
	if b.buf.Len() >= b.sizeLimit {
		b.emitLinesLocked()
	}
	b.armLocked()
	return len(p), nil
}

// Flush emits everything buffered.
func (b *LineBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitAllLocked()
}

// Close emits what is left. Later writes fail. It is idempotent.
func (b *LineBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.emitAllLocked()
	return nil
}

// armLocked starts the delay when output is waiting and no timer runs.
func (b *LineBatcher) armLocked() {
	if b.buf.Len() == 0 || b.timer != nil {
		return
	}
	b.timer = time.AfterFunc(b.delay, b.Flush)
}

// emitLinesLocked emits the buffer up to its last newline, or all of it when
// it holds one oversized line.
func (b *LineBatcher) emitLinesLocked() {
	data := b.buf.Bytes()
	end := bytes.LastIndexByte(data, '\n') + 1
	if end == 0 {
		end = len(data)
	}
	b.emitLocked(end)
	if b.buf.Len() == 0 {
		b.stopLocked()
	}
}

func (b *LineBatcher) emitAllLocked() {
	b.stopLocked()
	b.emitLocked(b.buf.Len())
}

func (b *LineBatcher) stopLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// emitLocked hands a copy of the first n buffered bytes to emit.
// Emitting under the lock keeps batches in write order.
func (b *LineBatcher) emitLocked(n int) {
	if n == 0 {
		return
	}
	data := bytes.Clone(b.buf.Next(n))
	if b.emit != nil {
		b.emit(data)
	}
}
