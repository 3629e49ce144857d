package realtime

import (
	"fmt"
	"testing"
)

func qmsg(i int) OutboundMessage {
	return OutboundMessage{ID: fmt.Sprintf("msg-%d", i), Type: "update"}
}

func TestSendQueueFIFO(t *testing.T) {
	q := newSendQueue(10)

	for i := 1; i <= 3; i++ {
		if evicted := q.push(qmsg(i)); evicted {
			t.Errorf("push %d evicted unexpectedly", i)
		}
	}
	if q.depth() != 3 {
		t.Fatalf("depth = %d, want 3", q.depth())
	}

	for i := 1; i <= 3; i++ {
		msg, ok := q.pop()
		if !ok {
			t.Fatalf("pop %d: queue empty", i)
		}
		if want := fmt.Sprintf("msg-%d", i); msg.ID != want {
			t.Errorf("pop %d: ID = %s, want %s", i, msg.ID, want)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("pop on empty queue should return false")
	}
}

func TestSendQueueEvictsOldest(t *testing.T) {
	q := newSendQueue(100)

	for i := 1; i <= 105; i++ {
		q.push(qmsg(i))
	}

	if q.depth() != 100 {
		t.Errorf("depth = %d, want 100", q.depth())
	}
	if q.dropped() != 5 {
		t.Errorf("dropped = %d, want 5", q.dropped())
	}

	// Messages 1-5 are gone; 6-105 survive in order.
	for i := 6; i <= 105; i++ {
		msg, ok := q.pop()
		if !ok {
			t.Fatalf("pop: queue empty at %d", i)
		}
		if want := fmt.Sprintf("msg-%d", i); msg.ID != want {
			t.Fatalf("pop: ID = %s, want %s", msg.ID, want)
		}
	}
}

func TestSendQueuePeekDoesNotRemove(t *testing.T) {
	q := newSendQueue(5)
	q.push(qmsg(1))

	msg, ok := q.peek()
	if !ok || msg.ID != "msg-1" {
		t.Fatalf("peek = %v %v, want msg-1 true", msg.ID, ok)
	}
	if q.depth() != 1 {
		t.Errorf("depth after peek = %d, want 1", q.depth())
	}

	msg, ok = q.pop()
	if !ok || msg.ID != "msg-1" {
		t.Fatalf("pop = %v %v, want msg-1 true", msg.ID, ok)
	}
	if _, ok := q.peek(); ok {
		t.Error("peek on empty queue should return false")
	}
}

func TestSendQueueWrapAround(t *testing.T) {
	q := newSendQueue(3)

	// Cycle through the ring a few times.
	n := 1
	for cycle := 0; cycle < 4; cycle++ {
		for i := 0; i < 3; i++ {
			q.push(qmsg(n))
			n++
		}
		for i := 0; i < 3; i++ {
			if _, ok := q.pop(); !ok {
				t.Fatalf("cycle %d: pop on empty queue", cycle)
			}
		}
	}
	if q.depth() != 0 {
		t.Errorf("depth = %d, want 0", q.depth())
	}
	if q.dropped() != 0 {
		t.Errorf("dropped = %d, want 0", q.dropped())
	}
}

func TestSendQueueSnapshot(t *testing.T) {
	q := newSendQueue(3)
	for i := 1; i <= 5; i++ {
		q.push(qmsg(i))
	}

	snap := q.snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	for i, msg := range snap {
		if want := fmt.Sprintf("msg-%d", i+3); msg.ID != want {
			t.Errorf("snapshot[%d] = %s, want %s", i, msg.ID, want)
		}
	}
	// Snapshot must not consume.
	if q.depth() != 3 {
		t.Errorf("depth after snapshot = %d, want 3", q.depth())
	}
}

func TestSendQueueMinCapacity(t *testing.T) {
	q := newSendQueue(0)
	q.push(qmsg(1))
	if evicted := q.push(qmsg(2)); !evicted {
		t.Error("second push into capacity-1 queue should evict")
	}
	msg, _ := q.pop()
	if msg.ID != "msg-2" {
		t.Errorf("pop = %s, want msg-2", msg.ID)
	}
}
