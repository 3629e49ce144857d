package realtime

import (
	"sync"
)

// sendQueue is a thread-safe bounded FIFO ring for outbound messages.
// When full, pushing evicts the oldest entry so the newest is always
// retained. Draining uses peek/pop so a message that fails to transmit
// stays at the head for the next attempt.
type sendQueue struct {
	mu       sync.Mutex
	buf      []OutboundMessage
	head     int // read position
	tail     int // write position
	count    int
	capacity int

	// Stats
	totalPushed  uint64
	totalPopped  uint64
	totalDropped uint64
}

// newSendQueue creates a queue with the given capacity.
func newSendQueue(capacity int) *sendQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &sendQueue{
		buf:      make([]OutboundMessage, capacity),
		capacity: capacity,
	}
}

// push appends a message, evicting the oldest entry if the queue is full.
// Returns true if an eviction occurred.
func (q *sendQueue) push(msg OutboundMessage) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	evicted := false
	if q.count == q.capacity {
		// Overwrite the head slot by advancing past it.
		var zero OutboundMessage
		q.buf[q.head] = zero
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.totalDropped++
		evicted = true
	}

	q.buf[q.tail] = msg
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.totalPushed++
	return evicted
}

// peek returns the oldest message without removing it.
func (q *sendQueue) peek() (OutboundMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return OutboundMessage{}, false
	}
	return q.buf[q.head], true
}

// pop removes the oldest message. Call after the transport has accepted
// the peeked message.
func (q *sendQueue) pop() (OutboundMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return OutboundMessage{}, false
	}

	msg := q.buf[q.head]
	var zero OutboundMessage
	q.buf[q.head] = zero // Clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.totalPopped++
	return msg, true
}

// depth returns the current number of queued messages.
func (q *sendQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// dropped returns the total number of evicted messages.
func (q *sendQueue) dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalDropped
}

// snapshot returns the queued messages in FIFO order.
func (q *sendQueue) snapshot() []OutboundMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}
	out := make([]OutboundMessage, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.buf[(q.head+i)%q.capacity]
	}
	return out
}
