package broadcast

import (
	"context"
	"sync"
)

// DefaultQueueCapacity buffers roughly 37 seconds of media at the ~250ms
// chunk cadence the browser publisher uses.
const DefaultQueueCapacity = 150

// OverflowPolicy decides which unit loses when a push hits a full queue.
type OverflowPolicy int

const (
	// DropOldest evicts the least-recently-queued unit to admit the new one.
	// Slow consumers lose history, never the live edge.
	DropOldest OverflowPolicy = iota
	// DropNewest discards the incoming unit and keeps the backlog intact.
	DropNewest
)

// Queue is a fixed-capacity ordered buffer of media units with exactly one
// consumer. Push never blocks: a full queue sheds a unit according to the
// overflow policy. Pop suspends until a unit arrives, the queue is closed,
// or the caller's context ends; both of the latter read as a normal
// end-of-stream, never an error.
type Queue struct {
	mu      sync.Mutex
	buf     []*MediaUnit // ring storage, len(buf) == capacity
	head    int          // index of the oldest unit
	count   int
	dropped int64
	closed  bool
	policy  OverflowPolicy

	notify chan struct{} // wakes the single consumer, capacity 1
	done   chan struct{} // closed exactly once by Close
}

func NewQueue(capacity int, policy OverflowPolicy) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		buf:    make([]*MediaUnit, capacity),
		policy: policy,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push enqueues a unit. On a closed queue it is a silent no-op. On a full
// queue the overflow policy is applied; the producer is never delayed and
// never sees a failure.
func (q *Queue) Push(unit *MediaUnit) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.count == len(q.buf) {
		q.dropped++
		if q.policy == DropNewest {
			q.mu.Unlock()
			return
		}
		// Evict the oldest slot, then fall through to the normal append.
		q.head = (q.head + 1) % len(q.buf)
		q.count--
	}
	q.buf[(q.head+q.count)%len(q.buf)] = unit
	q.count++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop returns the next unit in order. ok is false once the queue is closed
// and drained, or the context is done — the consumer treats all three the
// same way, as end-of-stream.
func (q *Queue) Pop(ctx context.Context) (*MediaUnit, bool) {
	for {
		q.mu.Lock()
		if q.count > 0 {
			unit := q.buf[q.head]
			q.buf[q.head] = nil
			q.head = (q.head + 1) % len(q.buf)
			q.count--
			q.mu.Unlock()
			return unit, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Close terminates the queue. Later pushes are no-ops; the consumer drains
// whatever is buffered and then observes end-of-stream. Safe to call more
// than once and concurrently with Push.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)
}

// Len returns the number of buffered, undelivered units.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the fixed capacity.
func (q *Queue) Capacity() int { return len(q.buf) }

// Dropped returns how many units the overflow policy has shed so far.
// Overflow is a policy outcome, not a fault; it surfaces only here and as
// sequence-number gaps on the consumer side.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Snapshot copies the buffered units in delivery order, for inspection.
func (q *Queue) Snapshot() []*MediaUnit {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*MediaUnit, 0, q.count)
	for i := 0; i < q.count; i++ {
		out = append(out, q.buf[(q.head+i)%len(q.buf)])
	}
	return out
}
