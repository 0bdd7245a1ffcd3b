// ABOUTME: Thread-safe byte ring buffer between callers and the device callback
// ABOUTME: Blocking reads/writes with close-to-wake semantics
package device

import "sync"

// ringBuffer is a circular byte buffer shared between a caller goroutine
// and the device's data callback. Writers block when full, blocking
// readers wake on data or close.
type ringBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	read   int
	write  int
	count  int
	closed bool
}

func newRingBuffer(capacity int) *ringBuffer {
	rb := &ringBuffer{buf: make([]byte, capacity)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// tryWrite copies as much of p as fits and returns the number of bytes
// taken. Used by the capture callback, which must never block.
func (rb *ringBuffer) tryWrite(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.closed {
		return 0
	}
	written := rb.writeLocked(p)
	if written > 0 {
		rb.cond.Broadcast()
	}
	return written
}

// writeBlocking copies all of p, waiting for space as the callback
// drains the buffer. Returns the bytes written and false if the ring was
// closed before p was fully queued.
func (rb *ringBuffer) writeBlocking(p []byte) (int, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for written < len(p) {
		if rb.closed {
			return written, false
		}
		n := rb.writeLocked(p[written:])
		written += n
		if n > 0 {
			rb.cond.Broadcast()
		}
		if written < len(p) {
			rb.cond.Wait()
		}
	}
	return written, true
}

func (rb *ringBuffer) writeLocked(p []byte) int {
	written := 0
	for written < len(p) && rb.count < len(rb.buf) {
		rb.buf[rb.write] = p[written]
		rb.write = (rb.write + 1) % len(rb.buf)
		rb.count++
		written++
	}
	return written
}

// tryRead fills p from the buffer, zero-filling any shortfall, and
// returns the bytes actually read. Used by the playback callback.
func (rb *ringBuffer) tryRead(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for read < len(p) && rb.count > 0 {
		p[read] = rb.buf[rb.read]
		rb.read = (rb.read + 1) % len(rb.buf)
		rb.count--
		read++
	}
	for i := read; i < len(p); i++ {
		p[i] = 0
	}
	if read > 0 {
		rb.cond.Broadcast()
	}
	return read
}

// readBlocking fills p with at least one byte, waiting for the callback
// to deliver data. Returns 0 and false once the ring is closed and empty.
func (rb *ringBuffer) readBlocking(p []byte) (int, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 {
		if rb.closed {
			return 0, false
		}
		rb.cond.Wait()
	}

	read := 0
	for read < len(p) && rb.count > 0 {
		p[read] = rb.buf[rb.read]
		rb.read = (rb.read + 1) % len(rb.buf)
		rb.count--
		read++
	}
	rb.cond.Broadcast()
	return read, true
}

// waitEmpty blocks until the buffer drains or closes.
func (rb *ringBuffer) waitEmpty() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for rb.count > 0 && !rb.closed {
		rb.cond.Wait()
	}
}

func (rb *ringBuffer) len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// close wakes every blocked reader and writer.
func (rb *ringBuffer) close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
